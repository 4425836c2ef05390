package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
)

var (
	ErrUnknownContractType = errors.New("unknown contract type")
	ErrMissingDetails      = errors.New("contract details are required")
)

// ContractService drafts customary contracts
type ContractService struct {
	generator Generator
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// ContractWithGenerator sets the model client
func ContractWithGenerator(g Generator) ContractServiceOption {
	return func(s *ContractService) {
		s.generator = g
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	s := &ContractService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DraftContractRequest represents a request to draft a contract
type DraftContractRequest struct {
	ContractType models.ContractType
	Details      string
}

// DraftContractResult holds the drafted contract
type DraftContractResult struct {
	Template models.ContractTemplate
	Text     string
	Sources  []models.Source
}

// Templates lists the contracts that can be drafted
func (s *ContractService) Templates() []models.ContractTemplate {
	return models.ContractTemplates
}

// Draft produces a contract of the requested type from the party details
func (s *ContractService) Draft(ctx context.Context, req DraftContractRequest) (*DraftContractResult, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrNotConfigured)
	}

	template := models.FindContractTemplate(req.ContractType)
	if template == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContractType, req.ContractType)
	}
	details := strings.TrimSpace(req.Details)
	if details == "" {
		return nil, ErrMissingDetails
	}

	resp, err := s.generator.Generate(ctx, gemini.Request{
		Feature:           "contract_drafting",
		SystemInstruction: contractInstruction,
		Text:              contractPrompt(template.Title, details),
		Grounding:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	return &DraftContractResult{
		Template: *template,
		Text:     resp.Text,
		Sources:  resp.Sources,
	}, nil
}
