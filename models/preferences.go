package models

import "time"

// PreferencesSchemaVersion is the current layout of stored preferences
const PreferencesSchemaVersion = 1

// InterestCategory is a branch of law a user follows on the radar
type InterestCategory string

const (
	InterestAdministrative InterestCategory = "administrative"
	InterestCivil          InterestCategory = "civil"
	InterestCriminal       InterestCategory = "criminal"
	InterestCommercial     InterestCategory = "commercial"
	InterestLabor          InterestCategory = "labor"
	InterestFamily         InterestCategory = "family"
	InterestTax            InterestCategory = "tax"
)

// InterestTitles maps each category to its Arabic branch name
var InterestTitles = map[InterestCategory]string{
	InterestAdministrative: "القانون الإداري",
	InterestCivil:          "القانون المدني",
	InterestCriminal:       "القانون الجنائي",
	InterestCommercial:     "القانون التجاري",
	InterestLabor:          "قانون العمل",
	InterestFamily:         "قانون الأسرة",
	InterestTax:            "القانون الجبائي",
}

// Valid reports whether c is a known category
func (c InterestCategory) Valid() bool {
	_, ok := InterestTitles[c]
	return ok
}

// Preferences holds a client's radar interests
type Preferences struct {
	ClientID      string             `json:"client_id"`
	SchemaVersion int                `json:"schema_version"`
	Interests     []InterestCategory `json:"interests"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
