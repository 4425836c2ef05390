package service

import "errors"

var (
	ErrGenerationFailed = errors.New("failed to generate content")
	ErrEmptyQuery       = errors.New("query is empty")
	ErrNotConfigured    = errors.New("service dependency not configured")
)

func temperature(v float32) *float32 {
	return &v
}
