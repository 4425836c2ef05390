package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dzlegal-backend/models"
	"dzlegal-backend/repository"
)

var (
	ErrMissingClientID = errors.New("client id is required")
	ErrInvalidInterest = errors.New("unknown interest category")
)

// PreferencesService manages the radar interests of each client
type PreferencesService struct {
	store PreferencesStore
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(store PreferencesStore) *PreferencesService {
	return &PreferencesService{store: store}
}

// Get returns the client's preferences. A client with nothing stored gets an
// empty interest list.
func (s *PreferencesService) Get(ctx context.Context, clientID string) (*models.Preferences, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: preferences store", ErrNotConfigured)
	}

	prefs, err := s.store.Get(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.Preferences{
			ClientID:      clientID,
			SchemaVersion: models.PreferencesSchemaVersion,
			Interests:     []models.InterestCategory{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return prefs, nil
}

// Update replaces the client's interests. Duplicates are dropped and order is kept.
func (s *PreferencesService) Update(ctx context.Context, clientID string, interests []models.InterestCategory) (*models.Preferences, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	if s.store == nil {
		return nil, fmt.Errorf("%w: preferences store", ErrNotConfigured)
	}

	seen := make(map[models.InterestCategory]bool, len(interests))
	cleaned := make([]models.InterestCategory, 0, len(interests))
	for _, i := range interests {
		if !i.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInterest, i)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		cleaned = append(cleaned, i)
	}

	prefs := &models.Preferences{
		ClientID:      clientID,
		SchemaVersion: models.PreferencesSchemaVersion,
		Interests:     cleaned,
	}
	if err := s.store.Upsert(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to store preferences: %w", err)
	}
	return prefs, nil
}
