package repository

import (
	"context"

	"dzlegal-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CorrectionRepository handles database operations for community corrections
type CorrectionRepository struct {
	db *pgxpool.Pool
}

// NewCorrectionRepository creates a new correction repository
func NewCorrectionRepository(db *pgxpool.Pool) *CorrectionRepository {
	return &CorrectionRepository{db: db}
}

// Create stores a verified or rejected correction
func (r *CorrectionRepository) Create(ctx context.Context, c *models.Correction) error {
	query := `
		INSERT INTO corrections (
			id, schema_version, original_query, corrected_text, lawyer_info,
			verified, verdict, sources
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.SchemaVersion == 0 {
		c.SchemaVersion = models.CorrectionSchemaVersion
	}

	return r.db.QueryRow(
		ctx, query,
		c.ID,
		c.SchemaVersion,
		c.OriginalQuery,
		c.CorrectedText,
		c.LawyerInfo,
		c.Verified,
		c.Verdict,
		c.Sources,
	).Scan(&c.CreatedAt)
}

// List returns corrections newest first. A limit of zero or less returns all rows.
func (r *CorrectionRepository) List(ctx context.Context, verifiedOnly bool, limit int) ([]*models.Correction, error) {
	query := `
		SELECT id, schema_version, original_query, corrected_text, lawyer_info,
			verified, verdict, sources, created_at
		FROM corrections
		WHERE ($1 = FALSE OR verified = TRUE)
		ORDER BY created_at DESC`

	args := []any{verifiedOnly}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	corrections := make([]*models.Correction, 0)
	for rows.Next() {
		c := &models.Correction{}
		err := rows.Scan(
			&c.ID,
			&c.SchemaVersion,
			&c.OriginalQuery,
			&c.CorrectedText,
			&c.LawyerInfo,
			&c.Verified,
			&c.Verdict,
			&c.Sources,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		corrections = append(corrections, c)
	}

	return corrections, rows.Err()
}
