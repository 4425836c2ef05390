package service

import (
	"context"
	"time"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"

	"github.com/google/uuid"
)

// Generator is the generative model boundary
type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error)
}

// CorrectionStore persists community corrections
type CorrectionStore interface {
	Create(ctx context.Context, c *models.Correction) error
	List(ctx context.Context, verifiedOnly bool, limit int) ([]*models.Correction, error)
}

// TranscriptStore keeps the ephemeral messages of a consultation session
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, msgs ...models.ChatMessage) error
	List(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
}

// ResearchJobStore persists background research jobs
type ResearchJobStore interface {
	Create(ctx context.Context, job *models.ResearchJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResearchJobStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.ResearchSteps) error
	SaveStage(ctx context.Context, id uuid.UUID, stage models.ResearchStage, text string, sources models.Sources) error
	Complete(ctx context.Context, id uuid.UUID) error
	Fail(ctx context.Context, id uuid.UUID, errorMessage string) error
}

// DocumentStore persists document metadata
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
}

// PreferencesStore persists radar interests per client
type PreferencesStore interface {
	Get(ctx context.Context, clientID string) (*models.Preferences, error)
	Upsert(ctx context.Context, prefs *models.Preferences) error
}

// RadarCache keeps recent radar results
type RadarCache interface {
	Get(ctx context.Context, key string) (*models.RadarResult, bool, error)
	Set(ctx context.Context, key string, result *models.RadarResult, ttl time.Duration) error
}
