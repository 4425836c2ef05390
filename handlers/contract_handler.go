package handlers

import (
	"net/http"

	"dzlegal-backend/models"
	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
)

// ContractHandler handles contract drafting
type ContractHandler struct {
	contractService *service.ContractService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// ListTemplates handles GET /api/contracts/templates
func (h *ContractHandler) ListTemplates(c *gin.Context) {
	respondOK(c, http.StatusOK, h.contractService.Templates())
}

// DraftContractRequest is the body of POST /api/contracts/draft
type DraftContractRequest struct {
	ContractType models.ContractType `json:"contract_type" binding:"required"`
	Details      string              `json:"details"`
}

// Draft handles POST /api/contracts/draft
func (h *ContractHandler) Draft(c *gin.Context) {
	var req DraftContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.contractService.Draft(c.Request.Context(), service.DraftContractRequest{
		ContractType: req.ContractType,
		Details:      req.Details,
	})
	if err != nil {
		respondServiceError(c, err, msgContractFailed)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"template": result.Template,
		"text":     result.Text,
		"sources":  result.Sources,
	})
}
