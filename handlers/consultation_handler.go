package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"dzlegal-backend/gemini"
	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
)

// ConsultationHandler handles legal consultation requests
type ConsultationHandler struct {
	consultationService *service.ConsultationService
	maxAttachments      int
	maxAttachmentSize   int
	maxBodySize         int64
}

// NewConsultationHandler creates a new consultation handler
func NewConsultationHandler(consultationService *service.ConsultationService) *ConsultationHandler {
	h := &ConsultationHandler{
		consultationService: consultationService,
		maxAttachments:      service.MaxAnalyzedDocuments,
		maxAttachmentSize:   int(service.DefaultMaxFileSize),
	}
	// base64 grows data by 4/3; 1MB is left for the query and JSON framing
	h.maxBodySize = int64(h.maxAttachments*h.maxAttachmentSize)*4/3 + 1<<20
	return h
}

// AttachmentInput is a file sent inline with a question. Data is base64 in JSON.
type AttachmentInput struct {
	MimeType string `json:"mime_type" binding:"required"`
	Data     []byte `json:"data" binding:"required"`
}

// ConsultRequest is the body of POST /api/consultations
type ConsultRequest struct {
	SessionID   string            `json:"session_id"`
	Query       string            `json:"query"`
	Attachments []AttachmentInput `json:"attachments"`
}

// Consult handles POST /api/consultations
func (h *ConsultationHandler) Consult(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)

	var req ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE",
				fmt.Sprintf("Request body exceeds maximum of %d bytes", h.maxBodySize))
			return
		}
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if len(req.Attachments) > h.maxAttachments {
		respondError(c, http.StatusBadRequest, "TOO_MANY_ATTACHMENTS",
			fmt.Sprintf("At most %d attachments are allowed", h.maxAttachments))
		return
	}

	attachments := make([]gemini.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		if !service.AllowedMimeTypes[a.MimeType] {
			respondError(c, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE", "Only images and PDF files are allowed")
			return
		}
		if len(a.Data) > h.maxAttachmentSize {
			respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Attachment exceeds maximum size")
			return
		}
		attachments = append(attachments, gemini.Attachment{MIMEType: a.MimeType, Data: a.Data})
	}

	result, err := h.consultationService.Consult(c.Request.Context(), service.ConsultRequest{
		SessionID:   req.SessionID,
		Query:       req.Query,
		Attachments: attachments,
	})
	if err != nil {
		respondServiceError(c, err, msgConsultationFailed)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"session_id": result.SessionID,
		"message":    result.Message,
	})
}

// GetTranscript handles GET /api/consultations/:session_id
func (h *ConsultationHandler) GetTranscript(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.consultationService.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}
