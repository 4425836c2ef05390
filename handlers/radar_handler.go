package handlers

import (
	"net/http"

	"dzlegal-backend/models"
	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
)

// RadarHandler handles the legislative radar and client interests
type RadarHandler struct {
	radarService       *service.RadarService
	preferencesService *service.PreferencesService
}

// NewRadarHandler creates a new radar handler
func NewRadarHandler(radarService *service.RadarService, preferencesService *service.PreferencesService) *RadarHandler {
	return &RadarHandler{
		radarService:       radarService,
		preferencesService: preferencesService,
	}
}

// ScanRadarRequest is the body of POST /api/radar/scan. Both fields are optional.
type ScanRadarRequest struct {
	Query    string `json:"query"`
	ClientID string `json:"client_id"`
}

// Scan handles POST /api/radar/scan
func (h *RadarHandler) Scan(c *gin.Context) {
	var req ScanRadarRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	result, err := h.radarService.Scan(c.Request.Context(), service.ScanRadarRequest{
		Query:    req.Query,
		ClientID: req.ClientID,
	})
	if err != nil {
		respondServiceError(c, err, msgRadarFailed)
		return
	}

	respondOK(c, http.StatusOK, result)
}

// GetPreferences handles GET /api/preferences/:client_id
func (h *RadarHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferencesService.Get(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}
	respondOK(c, http.StatusOK, prefs)
}

// UpdatePreferencesRequest is the body of PUT /api/preferences/:client_id
type UpdatePreferencesRequest struct {
	Interests []models.InterestCategory `json:"interests"`
}

// UpdatePreferences handles PUT /api/preferences/:client_id
func (h *RadarHandler) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	prefs, err := h.preferencesService.Update(c.Request.Context(), c.Param("client_id"), req.Interests)
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}
	respondOK(c, http.StatusOK, prefs)
}
