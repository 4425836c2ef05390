package repository

import (
	"context"
	"fmt"
	"time"

	"dzlegal-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResearchJobRepository handles database operations for research jobs
type ResearchJobRepository struct {
	db *pgxpool.Pool
}

// NewResearchJobRepository creates a new research job repository
func NewResearchJobRepository(db *pgxpool.Pool) *ResearchJobRepository {
	return &ResearchJobRepository{db: db}
}

// Create inserts a job and fills its generated id and timestamps
func (r *ResearchJobRepository) Create(ctx context.Context, job *models.ResearchJob) error {
	query := `
		INSERT INTO research_jobs (
			id, topic, refs, status, current_step, steps, sources
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	return r.db.QueryRow(
		ctx, query,
		job.ID,
		job.Topic,
		job.References,
		job.Status,
		job.CurrentStep,
		job.Steps,
		job.Sources,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

// GetByID retrieves a research job by ID
func (r *ResearchJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchJob, error) {
	job := &models.ResearchJob{}
	query := `
		SELECT id, topic, refs, status, current_step, steps, plan, content, conclusion,
			sources, error_message, created_at, updated_at, completed_at
		FROM research_jobs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Topic,
		&job.References,
		&job.Status,
		&job.CurrentStep,
		&job.Steps,
		&job.Plan,
		&job.Content,
		&job.Conclusion,
		&job.Sources,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if job.Steps == nil {
		job.Steps = make(models.ResearchSteps, 0)
	}
	if job.Sources == nil {
		job.Sources = make(models.Sources, 0)
	}

	return job, nil
}

// UpdateStatus updates the status of a research job
func (r *ResearchJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResearchJobStatus) error {
	query := `
		UPDATE research_jobs SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateProgress stores the current step and the step list
func (r *ResearchJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.ResearchSteps) error {
	query := `
		UPDATE research_jobs SET
			current_step = $2,
			steps = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, currentStep, steps)
	return err
}

// SaveStage stores the generated text of one stage along with the
// accumulated sources of the job
func (r *ResearchJobRepository) SaveStage(ctx context.Context, id uuid.UUID, stage models.ResearchStage, text string, sources models.Sources) error {
	var column string
	switch stage {
	case models.StagePlan:
		column = "plan"
	case models.StageContent:
		column = "content"
	case models.StageConclusion:
		column = "conclusion"
	default:
		return fmt.Errorf("unknown research stage: %s", stage)
	}

	query := fmt.Sprintf(`
		UPDATE research_jobs SET
			%s = $2,
			sources = $3,
			updated_at = NOW()
		WHERE id = $1`, column)

	_, err := r.db.Exec(ctx, query, id, text, sources)
	return err
}

// Complete marks a research job as completed
func (r *ResearchJobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE research_jobs SET
			status = $2,
			current_step = NULL,
			completed_at = $3,
			updated_at = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusCompleted, now)
	return err
}

// Fail marks a research job as failed
func (r *ResearchJobRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE research_jobs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusFailed, errorMessage)
	return err
}

// FailInterrupted marks every pending or in-progress job as failed and returns
// how many were changed. Called at startup, before any job can be running.
func (r *ResearchJobRepository) FailInterrupted(ctx context.Context, errorMessage string) (int64, error) {
	query := `
		UPDATE research_jobs SET
			status = $1,
			error_message = $2,
			updated_at = NOW()
		WHERE status IN ($3, $4)`

	tag, err := r.db.Exec(ctx, query, models.JobStatusFailed, errorMessage,
		models.JobStatusPending, models.JobStatusInProgress)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
