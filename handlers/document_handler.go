package handlers

import (
	"fmt"
	"net/http"

	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles document upload, download and analysis
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/documents/upload (multipart: file, session_id)
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}

	if fileHeader.Size > h.documentService.MaxFileSize() {
		respondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum of %d bytes", h.documentService.MaxFileSize()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), service.UploadDocumentRequest{
		SessionID: c.PostForm("session_id"),
		Filename:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		Size:      fileHeader.Size,
		Data:      file,
	})
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"id":         doc.ID,
		"filename":   doc.Filename,
		"mime_type":  doc.MimeType,
		"size":       doc.Size,
		"created_at": doc.CreatedAt,
	})
}

// Download handles GET /api/documents/:id
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid document ID format")
		return
	}

	doc, reader, err := h.documentService.Open(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, msgInternalError)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, doc.Size, doc.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", doc.Filename),
	})
}

// AnalyzeDocumentsRequest is the body of POST /api/documents/analyze
type AnalyzeDocumentsRequest struct {
	DocumentIDs []string `json:"document_ids" binding:"required"`
	Query       string   `json:"query"`
}

// Analyze handles POST /api/documents/analyze
func (h *DocumentHandler) Analyze(c *gin.Context) {
	var req AnalyzeDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.DocumentIDs))
	for _, s := range req.DocumentIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid document ID format")
			return
		}
		ids = append(ids, id)
	}

	result, err := h.documentService.Analyze(c.Request.Context(), service.AnalyzeDocumentsRequest{
		DocumentIDs: ids,
		Query:       req.Query,
	})
	if err != nil {
		respondServiceError(c, err, msgAnalysisFailed)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"documents": result.Documents,
		"text":      result.Text,
		"sources":   result.Sources,
	})
}
