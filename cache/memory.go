package cache

import (
	"context"
	"sync"
	"time"

	"dzlegal-backend/models"
)

// MemoryTranscripts keeps transcripts in process memory. Used when Redis is
// not configured; sessions expire after ttl of inactivity.
type MemoryTranscripts struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memorySession
	now      func() time.Time
}

type memorySession struct {
	messages  []models.ChatMessage
	expiresAt time.Time
}

// NewMemoryTranscripts creates an in-memory transcript store
func NewMemoryTranscripts(ttl time.Duration) *MemoryTranscripts {
	return &MemoryTranscripts{
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// Append adds messages to a session and refreshes its expiry
func (m *MemoryTranscripts) Append(ctx context.Context, sessionID string, msgs ...models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.evict(now)

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &memorySession{}
		m.sessions[sessionID] = s
	}
	s.messages = append(s.messages, msgs...)
	s.expiresAt = now.Add(m.ttl)
	return nil
}

// List returns a copy of the session transcript
func (m *MemoryTranscripts) List(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evict(m.now())

	s, ok := m.sessions[sessionID]
	if !ok {
		return []models.ChatMessage{}, nil
	}
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

func (m *MemoryTranscripts) evict(now time.Time) {
	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// MemoryRadarCache keeps radar results in process memory
type MemoryRadarCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	result    models.RadarResult
	expiresAt time.Time
}

// NewMemoryRadarCache creates an in-memory radar cache
func NewMemoryRadarCache() *MemoryRadarCache {
	return &MemoryRadarCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a cached result if present and not expired
func (c *MemoryRadarCache) Get(ctx context.Context, key string) (*models.RadarResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	result := e.result
	return &result, true, nil
}

// Set stores a result for ttl
func (c *MemoryRadarCache) Set(ctx context.Context, key string, result *models.RadarResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{result: *result, expiresAt: c.now().Add(ttl)}
	return nil
}
