package service

import (
	"context"
	"sync"
	"time"

	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/repository"

	"github.com/google/uuid"
)

type fakeGenerator struct {
	mu       sync.Mutex
	requests []gemini.Request
	respond  func(req gemini.Request) (*gemini.Response, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.respond == nil {
		return &gemini.Response{Text: "ok"}, nil
	}
	return f.respond(req)
}

func (f *fakeGenerator) calls() []gemini.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gemini.Request(nil), f.requests...)
}

type fakeCorrectionStore struct {
	items   []*models.Correction
	listErr error
}

func (f *fakeCorrectionStore) Create(ctx context.Context, c *models.Correction) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	f.items = append(f.items, c)
	return nil
}

func (f *fakeCorrectionStore) List(ctx context.Context, verifiedOnly bool, limit int) ([]*models.Correction, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.Correction{}
	for i := len(f.items) - 1; i >= 0; i-- {
		if verifiedOnly && !f.items[i].Verified {
			continue
		}
		out = append(out, f.items[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.ResearchJob
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[uuid.UUID]*models.ResearchJob)}
}

func (f *fakeJobStore) Create(ctx context.Context, job *models.ResearchJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ResearchJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *job
	copied.Steps = append(models.ResearchSteps(nil), job.Steps...)
	return &copied, nil
}

func (f *fakeJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ResearchJobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].Status = status
	return nil
}

func (f *fakeJobStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.ResearchSteps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].CurrentStep = &currentStep
	f.jobs[id].Steps = append(models.ResearchSteps(nil), steps...)
	return nil
}

func (f *fakeJobStore) SaveStage(ctx context.Context, id uuid.UUID, stage models.ResearchStage, text string, sources models.Sources) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := f.jobs[id]
	switch stage {
	case models.StagePlan:
		job.Plan = &text
	case models.StageContent:
		job.Content = &text
	case models.StageConclusion:
		job.Conclusion = &text
	}
	job.Sources = append(models.Sources(nil), sources...)
	return nil
}

func (f *fakeJobStore) Complete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.jobs[id].Status = models.JobStatusCompleted
	f.jobs[id].CompletedAt = &now
	return nil
}

func (f *fakeJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[id].Status = models.JobStatusFailed
	f.jobs[id].ErrorMessage = &errorMessage
	return nil
}

type fakeDocumentStore struct {
	docs map[uuid.UUID]*models.Document
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[uuid.UUID]*models.Document)}
}

func (f *fakeDocumentStore) Create(ctx context.Context, doc *models.Document) error {
	doc.CreatedAt = time.Now()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc, nil
}

type fakePreferencesStore struct {
	prefs map[string]*models.Preferences
}

func newFakePreferencesStore() *fakePreferencesStore {
	return &fakePreferencesStore{prefs: make(map[string]*models.Preferences)}
}

func (f *fakePreferencesStore) Get(ctx context.Context, clientID string) (*models.Preferences, error) {
	p, ok := f.prefs[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePreferencesStore) Upsert(ctx context.Context, prefs *models.Preferences) error {
	prefs.UpdatedAt = time.Now()
	f.prefs[prefs.ClientID] = prefs
	return nil
}
