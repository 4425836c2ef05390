package models

import (
	"time"

	"github.com/google/uuid"
)

// CorrectionSchemaVersion is the current layout of stored corrections
const CorrectionSchemaVersion = 1

// Correction is a user claim that a previous answer was legally wrong,
// paired with the proposed fix and the gazette verification outcome.
type Correction struct {
	ID            uuid.UUID `json:"id"`
	SchemaVersion int       `json:"schema_version"`
	OriginalQuery string    `json:"original_query"`
	CorrectedText string    `json:"corrected_text"`
	LawyerInfo    *string   `json:"lawyer_info,omitempty"`
	Verified      bool      `json:"verified"`
	Verdict       string    `json:"verdict"`
	Sources       Sources   `json:"sources"`
	CreatedAt     time.Time `json:"created_at"`
}
