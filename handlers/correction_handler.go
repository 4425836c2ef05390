package handlers

import (
	"net/http"
	"strconv"

	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
)

// maxCorrectionsPage caps the limit a client may ask for
const maxCorrectionsPage = 100

// CorrectionHandler handles community corrections
type CorrectionHandler struct {
	correctionService *service.CorrectionService
	defaultLimit      int
}

// NewCorrectionHandler creates a new correction handler. defaultLimit is the
// page size used when the client sends no limit.
func NewCorrectionHandler(correctionService *service.CorrectionService, defaultLimit int) *CorrectionHandler {
	if defaultLimit <= 0 || defaultLimit > maxCorrectionsPage {
		defaultLimit = maxCorrectionsPage
	}
	return &CorrectionHandler{
		correctionService: correctionService,
		defaultLimit:      defaultLimit,
	}
}

// SubmitCorrectionRequest is the body of POST /api/corrections
type SubmitCorrectionRequest struct {
	OriginalQuery string `json:"original_query" binding:"required"`
	CorrectedText string `json:"corrected_text" binding:"required"`
	LawyerInfo    string `json:"lawyer_info"`
}

// Submit handles POST /api/corrections. The correction is verified against
// the gazette and stored whatever the verdict.
func (h *CorrectionHandler) Submit(c *gin.Context) {
	var req SubmitCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	correction, err := h.correctionService.Submit(c.Request.Context(), service.SubmitCorrectionRequest{
		OriginalQuery: req.OriginalQuery,
		CorrectedText: req.CorrectedText,
		LawyerInfo:    req.LawyerInfo,
	})
	if err != nil {
		respondServiceError(c, err, msgVerificationFailed)
		return
	}

	respondOK(c, http.StatusCreated, correction)
}

// List handles GET /api/corrections?verified=true&limit=20. A missing or
// zero limit uses the default page size; larger limits are capped.
func (h *CorrectionHandler) List(c *gin.Context) {
	verifiedOnly, _ := strconv.ParseBool(c.Query("verified"))

	limit := h.defaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		if n > 0 {
			limit = min(n, maxCorrectionsPage)
		}
	}

	corrections, err := h.correctionService.List(c.Request.Context(), service.ListCorrectionsRequest{
		VerifiedOnly: verifiedOnly,
		Limit:        limit,
	})
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"corrections": corrections,
		"total":       len(corrections),
	})
}
