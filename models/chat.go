package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// DefaultSourceTitle is used for grounding citations that carry no title
const DefaultSourceTitle = "مرجع رسمي"

// Source is a citation link extracted from a model response
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Sources represents a list of citations stored as JSONB
type Sources []Source

// Value implements driver.Valuer for JSONB
func (s Sources) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]Source{})
	}
	return json.Marshal([]Source(s))
}

// Scan implements sql.Scanner for JSONB
func (s *Sources) Scan(value interface{}) error {
	if value == nil {
		*s = make(Sources, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*s = make(Sources, 0)
		return nil
	}

	if len(bytes) == 0 {
		*s = make(Sources, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ChatMessage is one entry of a consultation transcript
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Sources   Sources   `json:"sources,omitempty"`
}
