package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"
)

var ErrInvalidCorrection = errors.New("original query and corrected text are required")

// CorrectionService verifies community corrections against the official gazette
type CorrectionService struct {
	generator Generator
	store     CorrectionStore
}

// CorrectionServiceOption is a functional option for CorrectionService
type CorrectionServiceOption func(*CorrectionService)

// CorrectionWithGenerator sets the model client
func CorrectionWithGenerator(g Generator) CorrectionServiceOption {
	return func(s *CorrectionService) {
		s.generator = g
	}
}

// CorrectionWithStore sets the correction store
func CorrectionWithStore(store CorrectionStore) CorrectionServiceOption {
	return func(s *CorrectionService) {
		s.store = store
	}
}

// NewCorrectionService creates a new correction service
func NewCorrectionService(opts ...CorrectionServiceOption) *CorrectionService {
	s := &CorrectionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitCorrectionRequest represents a proposed fix to a previous answer
type SubmitCorrectionRequest struct {
	OriginalQuery string
	CorrectedText string
	LawyerInfo    string
}

// ListCorrectionsRequest filters the stored corrections
type ListCorrectionsRequest struct {
	VerifiedOnly bool
	Limit        int
}

// Submit verifies the correction and stores it whatever the verdict
func (s *CorrectionService) Submit(ctx context.Context, req SubmitCorrectionRequest) (*models.Correction, error) {
	if s.generator == nil || s.store == nil {
		return nil, fmt.Errorf("%w: correction service", ErrNotConfigured)
	}

	query := strings.TrimSpace(req.OriginalQuery)
	corrected := strings.TrimSpace(req.CorrectedText)
	if query == "" || corrected == "" {
		return nil, ErrInvalidCorrection
	}

	resp, err := s.generator.Generate(ctx, gemini.Request{
		Feature:           "correction_verification",
		SystemInstruction: verificationInstruction,
		Text:              verificationPrompt(query, corrected),
		Temperature:       temperature(0.1),
		Grounding:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	verified, verdict := ParseVerdict(resp.Text)
	correction := &models.Correction{
		SchemaVersion: models.CorrectionSchemaVersion,
		OriginalQuery: query,
		CorrectedText: corrected,
		Verified:      verified,
		Verdict:       verdict,
		Sources:       resp.Sources,
	}
	if lawyer := strings.TrimSpace(req.LawyerInfo); lawyer != "" {
		correction.LawyerInfo = &lawyer
	}

	if err := s.store.Create(ctx, correction); err != nil {
		return nil, fmt.Errorf("failed to store correction: %w", err)
	}

	logger.Info(ctx, "correction verified",
		"correction_id", correction.ID,
		"verified", correction.Verified,
		"sources", len(correction.Sources),
	)
	return correction, nil
}

// List returns stored corrections, newest first
func (s *CorrectionService) List(ctx context.Context, req ListCorrectionsRequest) ([]*models.Correction, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: correction store", ErrNotConfigured)
	}
	return s.store.List(ctx, req.VerifiedOnly, req.Limit)
}

// ParseVerdict reads the verification markers. The correction is verified
// only when the confirmation marker is present; both markers are removed
// from the returned verdict.
func ParseVerdict(text string) (bool, string) {
	verified := strings.Contains(text, markerVerified)
	verdict := strings.ReplaceAll(text, markerVerified, "")
	verdict = strings.ReplaceAll(verdict, markerRejected, "")
	return verified, strings.TrimSpace(verdict)
}
