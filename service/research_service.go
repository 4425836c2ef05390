package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"
	"dzlegal-backend/repository"

	"github.com/google/uuid"
)

const (
	stepPending    = "pending"
	stepInProgress = "in_progress"
	stepCompleted  = "completed"
	stepFailed     = "failed"

	// plan and content are cut to this many runes before being passed on
	stageContextLimit = 4000
)

var (
	ErrMissingTopic      = errors.New("research topic is required")
	ErrUnknownStage      = errors.New("unknown research stage")
	ErrJobCreationFailed = errors.New("failed to create research job")
	ErrJobNotFound       = errors.New("research job not found")
)

var stepNames = map[models.ResearchStage]string{
	models.StagePlan:       "إعداد خطة البحث",
	models.StageContent:    "تحرير متن البحث",
	models.StageConclusion: "الخاتمة وقائمة المراجع",
}

// ResearchService generates academic legal research in three stages
type ResearchService struct {
	generator Generator
	jobs      ResearchJobStore
}

// ResearchServiceOption is a functional option for ResearchService
type ResearchServiceOption func(*ResearchService)

// ResearchWithGenerator sets the model client
func ResearchWithGenerator(g Generator) ResearchServiceOption {
	return func(s *ResearchService) {
		s.generator = g
	}
}

// ResearchWithJobStore sets the research job store
func ResearchWithJobStore(store ResearchJobStore) ResearchServiceOption {
	return func(s *ResearchService) {
		s.jobs = store
	}
}

// NewResearchService creates a new research service
func NewResearchService(opts ...ResearchServiceOption) *ResearchService {
	s := &ResearchService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartResearchRequest represents a request for a full research paper
type StartResearchRequest struct {
	Topic      string
	References string
}

// StartResearchResult holds the id of the created job
type StartResearchResult struct {
	JobID uuid.UUID
}

// GenerateStageRequest represents a single synchronous stage
type GenerateStageRequest struct {
	Topic   string
	Stage   models.ResearchStage
	Context string
}

// GenerateStageResult holds the text of one stage
type GenerateStageResult struct {
	Stage   models.ResearchStage
	Text    string
	Sources []models.Source
}

// StartResearch validates the topic and creates a pending job. It does not
// call the model; ProcessResearch does the work.
func (s *ResearchService) StartResearch(ctx context.Context, req StartResearchRequest) (*StartResearchResult, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("%w: research job store", ErrNotConfigured)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, ErrMissingTopic
	}

	job := &models.ResearchJob{
		ID:         uuid.New(),
		Topic:      topic,
		References: strings.TrimSpace(req.References),
		Status:     models.JobStatusPending,
		Steps:      initializeResearchSteps(),
		Sources:    models.Sources{},
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		logger.Error(ctx, "failed to create research job", "error", err)
		return nil, ErrJobCreationFailed
	}

	return &StartResearchResult{JobID: job.ID}, nil
}

// GetJob returns a research job for polling
func (s *ResearchService) GetJob(ctx context.Context, id uuid.UUID) (*models.ResearchJob, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("%w: research job store", ErrNotConfigured)
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return job, nil
}

// ProcessResearch runs every stage of the job in order. Each stage receives
// the output of the previous ones. It is meant to run in its own goroutine.
func (s *ResearchService) ProcessResearch(ctx context.Context, jobID uuid.UUID) error {
	if s.jobs == nil || s.generator == nil {
		return fmt.Errorf("%w: research service", ErrNotConfigured)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load research job: %w", err)
	}

	if err := s.jobs.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	steps := job.Steps
	if len(steps) == 0 {
		steps = initializeResearchSteps()
	}
	sources := append(models.Sources{}, job.Sources...)
	outputs := make(map[models.ResearchStage]string, len(models.ResearchStages))

	for _, stage := range models.ResearchStages {
		if err := s.setStepStatus(ctx, jobID, steps, stage, stepInProgress); err != nil {
			s.markJobFailed(ctx, jobID, steps, stage, "failed to update step: "+err.Error())
			return err
		}

		result, err := s.GenerateStage(ctx, GenerateStageRequest{
			Topic:   job.Topic,
			Stage:   stage,
			Context: stageContext(stage, job.References, outputs),
		})
		if err != nil {
			s.markJobFailed(ctx, jobID, steps, stage, fmt.Sprintf("failed to generate %s: %v", stage, err))
			return fmt.Errorf("failed to generate %s: %w", stage, err)
		}

		outputs[stage] = result.Text
		sources = mergeSources(sources, result.Sources)
		if err := s.jobs.SaveStage(ctx, jobID, stage, result.Text, sources); err != nil {
			s.markJobFailed(ctx, jobID, steps, stage, "failed to store stage: "+err.Error())
			return err
		}

		if err := s.setStepStatus(ctx, jobID, steps, stage, stepCompleted); err != nil {
			s.markJobFailed(ctx, jobID, steps, stage, "failed to update step: "+err.Error())
			return err
		}
	}

	if err := s.jobs.Complete(ctx, jobID); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	logger.Info(ctx, "research job completed", "job_id", jobID, "sources", len(sources))
	return nil
}

// GenerateStage produces one stage synchronously
func (s *ResearchService) GenerateStage(ctx context.Context, req GenerateStageRequest) (*GenerateStageResult, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrNotConfigured)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return nil, ErrMissingTopic
	}
	if !req.Stage.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, req.Stage)
	}

	resp, err := s.generator.Generate(ctx, gemini.Request{
		Feature:           "research_" + string(req.Stage),
		SystemInstruction: researchInstruction,
		Text:              researchPrompt(topic, req.Stage, strings.TrimSpace(req.Context)),
		Temperature:       temperature(0.2),
		Grounding:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return &GenerateStageResult{
		Stage:   req.Stage,
		Text:    resp.Text,
		Sources: resp.Sources,
	}, nil
}

func initializeResearchSteps() models.ResearchSteps {
	steps := make(models.ResearchSteps, 0, len(models.ResearchStages))
	for _, stage := range models.ResearchStages {
		steps = append(steps, models.ResearchStep{
			Name:   stepNames[stage],
			Stage:  stage,
			Status: stepPending,
		})
	}
	return steps
}

// stageContext builds what a stage sees of the work done before it
func stageContext(stage models.ResearchStage, references string, outputs map[models.ResearchStage]string) string {
	switch stage {
	case models.StageContent:
		parts := []string{}
		if references != "" {
			parts = append(parts, references)
		}
		if plan := outputs[models.StagePlan]; plan != "" {
			parts = append(parts, "الخطة:\n"+truncateRunes(plan, stageContextLimit))
		}
		return strings.Join(parts, "\n\n")
	case models.StageConclusion:
		parts := []string{}
		if plan := outputs[models.StagePlan]; plan != "" {
			parts = append(parts, "الخطة:\n"+truncateRunes(plan, stageContextLimit))
		}
		if content := outputs[models.StageContent]; content != "" {
			parts = append(parts, "المتن:\n"+truncateRunes(content, stageContextLimit))
		}
		return strings.Join(parts, "\n\n")
	default:
		return ""
	}
}

func (s *ResearchService) setStepStatus(ctx context.Context, jobID uuid.UUID, steps models.ResearchSteps, stage models.ResearchStage, status string) error {
	currentStep := ""
	for i := range steps {
		if steps[i].Stage == stage {
			steps[i].Status = status
			currentStep = steps[i].Name
		}
	}
	return s.jobs.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed records the failure; errors here are only logged
func (s *ResearchService) markJobFailed(ctx context.Context, jobID uuid.UUID, steps models.ResearchSteps, stage models.ResearchStage, msg string) {
	logger.Error(ctx, "research job failed", "job_id", jobID, "stage", stage, "error", msg)

	if err := s.setStepStatus(ctx, jobID, steps, stage, stepFailed); err != nil {
		logger.Warn(ctx, "failed to mark research step failed", "job_id", jobID, "error", err)
	}
	if err := s.jobs.Fail(ctx, jobID, msg); err != nil {
		logger.Warn(ctx, "failed to mark research job failed", "job_id", jobID, "error", err)
	}
}

func mergeSources(existing models.Sources, more []models.Source) models.Sources {
	seen := make(map[string]bool, len(existing)+len(more))
	for _, s := range existing {
		seen[s.URL] = true
	}
	for _, s := range more {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		existing = append(existing, s)
	}
	return existing
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
