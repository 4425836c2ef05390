package handlers

import (
	"net/http"

	"dzlegal-backend/models"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static section and resource listings
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// ListSections handles GET /api/sections
func (h *CatalogHandler) ListSections(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"home":     models.HomeCard,
		"sections": models.SectionCards,
	})
}

// GetSection handles GET /api/sections/:key
func (h *CatalogHandler) GetSection(c *gin.Context) {
	section, ok := models.ParseSection(c.Param("key"))
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Unknown section")
		return
	}

	card, ok := models.FindSectionCard(section)
	if !ok {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Unknown section")
		return
	}
	respondOK(c, http.StatusOK, card)
}

// ListResources handles GET /api/resources
func (h *CatalogHandler) ListResources(c *gin.Context) {
	respondOK(c, http.StatusOK, models.OfficialResources)
}
