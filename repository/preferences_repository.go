package repository

import (
	"context"

	"dzlegal-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository handles database operations for radar preferences
type PreferencesRepository struct {
	db *pgxpool.Pool
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *pgxpool.Pool) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the preferences of a client or ErrNotFound
func (r *PreferencesRepository) Get(ctx context.Context, clientID string) (*models.Preferences, error) {
	query := `
		SELECT client_id, schema_version, interests, updated_at
		FROM preferences
		WHERE client_id = $1`

	prefs := &models.Preferences{}
	var interests []string
	err := r.db.QueryRow(ctx, query, clientID).Scan(
		&prefs.ClientID,
		&prefs.SchemaVersion,
		&interests,
		&prefs.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	prefs.Interests = make([]models.InterestCategory, 0, len(interests))
	for _, i := range interests {
		prefs.Interests = append(prefs.Interests, models.InterestCategory(i))
	}
	return prefs, nil
}

// Upsert creates or replaces the preferences of a client
func (r *PreferencesRepository) Upsert(ctx context.Context, prefs *models.Preferences) error {
	query := `
		INSERT INTO preferences (client_id, schema_version, interests, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (client_id) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			interests = EXCLUDED.interests,
			updated_at = NOW()
		RETURNING updated_at`

	if prefs.SchemaVersion == 0 {
		prefs.SchemaVersion = models.PreferencesSchemaVersion
	}
	interests := make([]string, 0, len(prefs.Interests))
	for _, i := range prefs.Interests {
		interests = append(interests, string(i))
	}

	return r.db.QueryRow(ctx, query, prefs.ClientID, prefs.SchemaVersion, interests).Scan(&prefs.UpdatedAt)
}
