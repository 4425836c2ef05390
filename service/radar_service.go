package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"

	"github.com/cespare/xxhash/v2"
)

const defaultRadarTTL = 6 * time.Hour

// RadarService scans official sources for recent legislative changes
type RadarService struct {
	generator   Generator
	cache       RadarCache
	preferences *PreferencesService
	ttl         time.Duration
	now         func() time.Time
}

// RadarServiceOption is a functional option for RadarService
type RadarServiceOption func(*RadarService)

// RadarWithGenerator sets the model client
func RadarWithGenerator(g Generator) RadarServiceOption {
	return func(s *RadarService) {
		s.generator = g
	}
}

// RadarWithCache sets the result cache and its TTL
func RadarWithCache(c RadarCache, ttl time.Duration) RadarServiceOption {
	return func(s *RadarService) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// RadarWithPreferences lets empty queries follow a client's interests
func RadarWithPreferences(p *PreferencesService) RadarServiceOption {
	return func(s *RadarService) {
		s.preferences = p
	}
}

// NewRadarService creates a new radar service
func NewRadarService(opts ...RadarServiceOption) *RadarService {
	s := &RadarService{
		ttl: defaultRadarTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanRadarRequest represents a radar scan. An empty query falls back to the
// client's interests, then to the latest-laws query.
type ScanRadarRequest struct {
	Query    string
	ClientID string
}

// Scan returns recent updates, served from cache when a fresh result exists
func (s *RadarService) Scan(ctx context.Context, req ScanRadarRequest) (*models.RadarResult, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generator", ErrNotConfigured)
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = s.interestQuery(ctx, req.ClientID)
	}

	key := s.cacheKey(query)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warn(ctx, "radar cache read failed", "error", err)
		} else if ok {
			cached.Cached = true
			return cached, nil
		}
	}

	resp, err := s.generator.Generate(ctx, gemini.Request{
		Feature:           "radar",
		SystemInstruction: radarInstruction,
		Text:              radarPrompt(query),
		Temperature:       temperature(0.1),
		Grounding:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	result := &models.RadarResult{
		Query:       query,
		Text:        resp.Text,
		Sources:     resp.Sources,
		GeneratedAt: s.now(),
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
			logger.Warn(ctx, "radar cache write failed", "error", err)
		}
	}
	return result, nil
}

func (s *RadarService) interestQuery(ctx context.Context, clientID string) string {
	if s.preferences == nil || clientID == "" {
		return defaultRadarQuery
	}
	prefs, err := s.preferences.Get(ctx, clientID)
	if err != nil {
		if !errors.Is(err, ErrMissingClientID) {
			logger.Warn(ctx, "failed to load radar preferences", "client_id", clientID, "error", err)
		}
		return defaultRadarQuery
	}
	if len(prefs.Interests) == 0 {
		return defaultRadarQuery
	}

	titles := make([]string, 0, len(prefs.Interests))
	for _, i := range prefs.Interests {
		titles = append(titles, models.InterestTitles[i])
	}
	return "أحدث المستجدات التشريعية الصادرة في آخر 10 أيام في: " + strings.Join(titles, "، ")
}

// cacheKey scopes results to the query and the current day
func (s *RadarService) cacheKey(query string) string {
	return s.now().Format(dateLayout) + ":" + strconv.FormatUint(xxhash.Sum64String(query), 16)
}
