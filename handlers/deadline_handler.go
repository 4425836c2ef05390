package handlers

import (
	"net/http"

	"dzlegal-backend/models"
	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
)

// DeadlineHandler handles procedural deadline requests
type DeadlineHandler struct {
	deadlineService *service.DeadlineService
}

// NewDeadlineHandler creates a new deadline handler
func NewDeadlineHandler(deadlineService *service.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{deadlineService: deadlineService}
}

// ListProcedures handles GET /api/deadlines/procedures
func (h *DeadlineHandler) ListProcedures(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"policy":     h.deadlineService.DefaultPolicy(),
		"procedures": h.deadlineService.Procedures(),
	})
}

// CalculateDeadlineRequest is the body of POST /api/deadlines/calculate
type CalculateDeadlineRequest struct {
	StartDate string                `json:"start_date"`
	Procedure models.ProcedureType  `json:"procedure" binding:"required"`
	Policy    models.DeadlinePolicy `json:"policy"`
}

// Calculate handles POST /api/deadlines/calculate. An empty start date
// returns null data rather than an error.
func (h *DeadlineHandler) Calculate(c *gin.Context) {
	var req CalculateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	deadline, err := h.deadlineService.Calculate(service.CalculateDeadlineRequest{
		StartDate: req.StartDate,
		Procedure: req.Procedure,
		Policy:    req.Policy,
	})
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}

	respondOK(c, http.StatusOK, deadline)
}
