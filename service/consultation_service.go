package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"

	"github.com/google/uuid"
)

const defaultReplayLimit = 20

// ConsultationService answers legal questions and keeps the session transcript
type ConsultationService struct {
	generator   Generator
	corrections CorrectionStore
	transcripts TranscriptStore
	replayLimit int
	now         func() time.Time
}

// ConsultationServiceOption is a functional option for ConsultationService
type ConsultationServiceOption func(*ConsultationService)

// ConsultationWithGenerator sets the model client
func ConsultationWithGenerator(g Generator) ConsultationServiceOption {
	return func(s *ConsultationService) {
		s.generator = g
	}
}

// ConsultationWithCorrectionStore sets where verified corrections are read from
func ConsultationWithCorrectionStore(store CorrectionStore) ConsultationServiceOption {
	return func(s *ConsultationService) {
		s.corrections = store
	}
}

// ConsultationWithTranscriptStore sets the transcript store
func ConsultationWithTranscriptStore(store TranscriptStore) ConsultationServiceOption {
	return func(s *ConsultationService) {
		s.transcripts = store
	}
}

// ConsultationWithReplayLimit caps how many verified corrections are replayed
func ConsultationWithReplayLimit(n int) ConsultationServiceOption {
	return func(s *ConsultationService) {
		if n > 0 {
			s.replayLimit = n
		}
	}
}

// NewConsultationService creates a new consultation service
func NewConsultationService(opts ...ConsultationServiceOption) *ConsultationService {
	s := &ConsultationService{
		replayLimit: defaultReplayLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConsultRequest represents a legal question, optionally with attached files
type ConsultRequest struct {
	SessionID   string
	Query       string
	Attachments []gemini.Attachment
}

// ConsultResult holds the answer appended to the transcript
type ConsultResult struct {
	SessionID string
	Message   models.ChatMessage
}

// Consult answers a question with grounding and verified community context
func (s *ConsultationService) Consult(ctx context.Context, req ConsultRequest) (*ConsultResult, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrNotConfigured)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" && len(req.Attachments) == 0 {
		return nil, ErrEmptyQuery
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx = logger.WithSession(ctx, sessionID)

	userMsg := models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Text:      query,
		Sender:    models.SenderUser,
		Timestamp: s.now(),
	}

	resp, err := s.generator.Generate(ctx, gemini.Request{
		Feature:           "consultation",
		SystemInstruction: consultationInstruction,
		Text:              consultationPrompt(query, s.verifiedCorrections(ctx)),
		Attachments:       req.Attachments,
		Temperature:       temperature(0.1),
		Grounding:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	aiMsg := models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Text:      resp.Text,
		Sender:    models.SenderAI,
		Timestamp: s.now(),
		Sources:   resp.Sources,
	}

	if s.transcripts != nil {
		if err := s.transcripts.Append(ctx, sessionID, userMsg, aiMsg); err != nil {
			logger.Warn(ctx, "failed to store transcript", "error", err)
		}
	}

	return &ConsultResult{SessionID: sessionID, Message: aiMsg}, nil
}

// Transcript returns the messages of a session, oldest first
func (s *ConsultationService) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	if s.transcripts == nil {
		return []models.ChatMessage{}, nil
	}
	return s.transcripts.List(ctx, sessionID)
}

// verifiedCorrections loads the replayed context; failures only degrade the answer
func (s *ConsultationService) verifiedCorrections(ctx context.Context) []*models.Correction {
	if s.corrections == nil {
		return nil
	}
	corrections, err := s.corrections.List(ctx, true, s.replayLimit)
	if err != nil {
		logger.Warn(ctx, "failed to load verified corrections", "error", err)
		return nil
	}
	return corrections
}
