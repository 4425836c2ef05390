package handlers

import (
	"context"
	"net/http"
	"sync"

	"dzlegal-backend/models"
	"dzlegal-backend/pkg/logger"
	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResearchHandler handles academic research generation
type ResearchHandler struct {
	researchService *service.ResearchService
	// process runs a job after the response is sent; tests replace it
	process func(ctx context.Context, jobID uuid.UUID)
	jobs    sync.WaitGroup
}

// NewResearchHandler creates a new research handler
func NewResearchHandler(researchService *service.ResearchService) *ResearchHandler {
	h := &ResearchHandler{researchService: researchService}
	h.process = func(ctx context.Context, jobID uuid.UUID) {
		h.jobs.Add(1)
		go func() {
			defer h.jobs.Done()
			// Error is stored on the job; clients poll for it
			if err := h.researchService.ProcessResearch(ctx, jobID); err != nil {
				logger.Error(ctx, "research job failed", "job_id", jobID, "error", err)
			}
		}()
	}
	return h
}

// Wait blocks until every running research job has finished or ctx is done.
// It returns ctx.Err() when jobs are still running.
func (h *ResearchHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartResearchRequest is the body of POST /api/research
type StartResearchRequest struct {
	Topic      string `json:"topic" binding:"required"`
	References string `json:"references"`
}

// StartResearch handles POST /api/research
func (h *ResearchHandler) StartResearch(c *gin.Context) {
	var req StartResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.researchService.StartResearch(c.Request.Context(), service.StartResearchRequest{
		Topic:      req.Topic,
		References: req.References,
	})
	if err != nil {
		respondServiceError(c, err, msgResearchFailed)
		return
	}

	// Detached from the request so the job outlives it, keeping the request id for logs
	h.process(context.WithoutCancel(c.Request.Context()), result.JobID)

	respondOK(c, http.StatusAccepted, gin.H{
		"job_id":  result.JobID,
		"status":  models.JobStatusPending,
		"message": "Research job created. Poll /api/research/jobs/:id for updates.",
	})
}

// GenerateStageRequest is the body of POST /api/research/stage
type GenerateStageRequest struct {
	Topic   string               `json:"topic" binding:"required"`
	Stage   models.ResearchStage `json:"stage" binding:"required"`
	Context string               `json:"context"`
}

// GenerateStage handles POST /api/research/stage
func (h *ResearchHandler) GenerateStage(c *gin.Context) {
	var req GenerateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.researchService.GenerateStage(c.Request.Context(), service.GenerateStageRequest{
		Topic:   req.Topic,
		Stage:   req.Stage,
		Context: req.Context,
	})
	if err != nil {
		respondServiceError(c, err, msgResearchFailed)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"stage":   result.Stage,
		"text":    result.Text,
		"sources": result.Sources,
	})
}

// GetJob handles GET /api/research/jobs/:id
func (h *ResearchHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid job ID format")
		return
	}

	job, err := h.researchService.GetJob(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}

	respondOK(c, http.StatusOK, job)
}
