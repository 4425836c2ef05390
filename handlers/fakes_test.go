package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	respond func(req gemini.Request) (*gemini.Response, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.respond == nil {
		return &gemini.Response{
			Text:    "ok",
			Sources: []models.Source{{Title: "JORADP", URL: "https://www.joradp.dz"}},
		}, nil
	}
	return f.respond(req)
}

func failingGenerator() *fakeGenerator {
	return &fakeGenerator{respond: func(gemini.Request) (*gemini.Response, error) {
		return nil, gemini.ErrEmptyResponse
	}}
}

type memCorrections struct {
	mu    sync.Mutex
	items []*models.Correction
}

func (m *memCorrections) Create(ctx context.Context, c *models.Correction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	m.items = append(m.items, c)
	return nil
}

func (m *memCorrections) List(ctx context.Context, verifiedOnly bool, limit int) ([]*models.Correction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Correction{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if verifiedOnly && !m.items[i].Verified {
			continue
		}
		out = append(out, m.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type memJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.ResearchJob
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: make(map[uuid.UUID]*models.ResearchJob)}
}

func (m *memJobs) Create(ctx context.Context, job *models.ResearchJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobs) update(id uuid.UUID, fn func(*models.ResearchJob)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(job)
	return nil
}

func (m *memJobs) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResearchJobStatus) error {
	return m.update(id, func(j *models.ResearchJob) { j.Status = status })
}

func (m *memJobs) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.ResearchSteps) error {
	return m.update(id, func(j *models.ResearchJob) {
		j.CurrentStep = &currentStep
		j.Steps = append(models.ResearchSteps(nil), steps...)
	})
}

func (m *memJobs) SaveStage(ctx context.Context, id uuid.UUID, stage models.ResearchStage, text string, sources models.Sources) error {
	return m.update(id, func(j *models.ResearchJob) {
		switch stage {
		case models.StagePlan:
			j.Plan = &text
		case models.StageContent:
			j.Content = &text
		case models.StageConclusion:
			j.Conclusion = &text
		}
		j.Sources = sources
	})
}

func (m *memJobs) Complete(ctx context.Context, id uuid.UUID) error {
	return m.update(id, func(j *models.ResearchJob) {
		now := time.Now()
		j.Status = models.JobStatusCompleted
		j.CompletedAt = &now
	})
}

func (m *memJobs) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return m.update(id, func(j *models.ResearchJob) {
		j.Status = models.JobStatusFailed
		j.ErrorMessage = &errorMessage
	})
}

type memDocuments struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: make(map[uuid.UUID]*models.Document)}
}

func (m *memDocuments) Create(ctx context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.CreatedAt = time.Now()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *memDocuments) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

type memPreferences struct {
	mu    sync.Mutex
	prefs map[string]*models.Preferences
}

func newMemPreferences() *memPreferences {
	return &memPreferences{prefs: make(map[string]*models.Preferences)}
}

func (m *memPreferences) Get(ctx context.Context, clientID string) (*models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prefs[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPreferences) Upsert(ctx context.Context, prefs *models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefs.UpdatedAt = time.Now()
	cp := *prefs
	m.prefs[prefs.ClientID] = &cp
	return nil
}

// envelope is the decoded response body
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, decodeEnvelope(t, w)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode data %s: %v", env.Data, err)
	}
}
