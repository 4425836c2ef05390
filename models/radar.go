package models

import "time"

// RadarResult is a summary of recent legislative updates
type RadarResult struct {
	Query       string    `json:"query"`
	Text        string    `json:"text"`
	Sources     Sources   `json:"sources"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}
