package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ResearchJobStatus represents the status of a research job
type ResearchJobStatus string

const (
	JobStatusPending    ResearchJobStatus = "pending"
	JobStatusInProgress ResearchJobStatus = "in_progress"
	JobStatusCompleted  ResearchJobStatus = "completed"
	JobStatusFailed     ResearchJobStatus = "failed"
)

// ResearchStage is one phase of academic research generation
type ResearchStage string

const (
	StagePlan       ResearchStage = "plan"
	StageContent    ResearchStage = "content"
	StageConclusion ResearchStage = "conclusion"
)

// ResearchStages lists the stages in the order they run
var ResearchStages = []ResearchStage{StagePlan, StageContent, StageConclusion}

// Valid reports whether s is a known stage
func (s ResearchStage) Valid() bool {
	switch s {
	case StagePlan, StageContent, StageConclusion:
		return true
	}
	return false
}

// ResearchStep represents a step in the generation process
type ResearchStep struct {
	Name        string        `json:"name"`
	Stage       ResearchStage `json:"stage"`
	Status      string        `json:"status"` // "pending", "in_progress", "completed", "failed"
	Description string        `json:"description,omitempty"`
}

// ResearchSteps represents a list of research steps
type ResearchSteps []ResearchStep

// Value implements driver.Valuer for JSONB
func (r ResearchSteps) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB
func (r *ResearchSteps) Scan(value interface{}) error {
	if value == nil {
		*r = make(ResearchSteps, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*r = make(ResearchSteps, 0)
		return nil
	}

	if len(bytes) == 0 {
		*r = make(ResearchSteps, 0)
		return nil
	}

	return json.Unmarshal(bytes, r)
}

// ResearchJob represents a background research generation job
type ResearchJob struct {
	ID           uuid.UUID         `json:"id"`
	Topic        string            `json:"topic"`
	References   string            `json:"references,omitempty"`
	Status       ResearchJobStatus `json:"status"`
	CurrentStep  *string           `json:"current_step,omitempty"`
	Steps        ResearchSteps     `json:"steps"`
	Plan         *string           `json:"plan,omitempty"`
	Content      *string           `json:"content,omitempty"`
	Conclusion   *string           `json:"conclusion,omitempty"`
	Sources      Sources           `json:"sources"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}
