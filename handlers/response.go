package handlers

import (
	"errors"
	"net/http"

	"dzlegal-backend/pkg/logger"
	"dzlegal-backend/service"

	"github.com/gin-gonic/gin"
)

// User-facing messages shown when the model call fails
const (
	msgConsultationFailed = "عذراً، حدث خطأ أثناء معالجة الاستشارة. يرجى المحاولة مرة أخرى."
	msgVerificationFailed = "تعذر التحقق من التصحيح حالياً. يرجى المحاولة لاحقاً."
	msgContractFailed     = "تعذر صياغة العقد حالياً. يرجى المحاولة لاحقاً."
	msgAnalysisFailed     = "تعذر تحليل الوثائق حالياً. يرجى المحاولة لاحقاً."
	msgResearchFailed     = "تعذر إعداد البحث حالياً. يرجى المحاولة لاحقاً."
	msgRadarFailed        = "تعذر تمشيط المستجدات القانونية حالياً. يرجى المحاولة لاحقاً."
	msgInternalError      = "حدث خطأ داخلي، يرجى المحاولة لاحقاً"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var serviceErrors = []errorMapping{
	{service.ErrEmptyQuery, http.StatusBadRequest, "EMPTY_QUERY"},
	{service.ErrInvalidCorrection, http.StatusBadRequest, "INVALID_CORRECTION"},
	{service.ErrUnknownContractType, http.StatusBadRequest, "UNKNOWN_CONTRACT_TYPE"},
	{service.ErrMissingDetails, http.StatusBadRequest, "MISSING_DETAILS"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{service.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE"},
	{service.ErrDocumentCount, http.StatusBadRequest, "INVALID_DOCUMENT_COUNT"},
	{service.ErrDocumentNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrMissingTopic, http.StatusBadRequest, "MISSING_TOPIC"},
	{service.ErrUnknownStage, http.StatusBadRequest, "UNKNOWN_STAGE"},
	{service.ErrJobNotFound, http.StatusNotFound, "NOT_FOUND"},
	{service.ErrMissingClientID, http.StatusBadRequest, "MISSING_CLIENT_ID"},
	{service.ErrInvalidInterest, http.StatusBadRequest, "INVALID_INTEREST"},
	{service.ErrUnknownProcedure, http.StatusBadRequest, "UNKNOWN_PROCEDURE"},
	{service.ErrUnknownPolicy, http.StatusBadRequest, "UNKNOWN_POLICY"},
	{service.ErrInvalidStartDate, http.StatusBadRequest, "INVALID_START_DATE"},
	{service.ErrNotConfigured, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps a service error to its HTTP status. Model failures
// get aiMessage; anything unexpected is logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, err error, aiMessage string) {
	if errors.Is(err, service.ErrGenerationFailed) {
		respondError(c, http.StatusBadGateway, "AI_UNAVAILABLE", aiMessage)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			message := err.Error()
			if m.status >= http.StatusInternalServerError {
				logger.Error(c.Request.Context(), "service unavailable", "error", err)
				message = msgInternalError
			}
			respondError(c, m.status, m.code, message)
			return
		}
	}

	logger.Error(c.Request.Context(), "request failed", "error", err)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", msgInternalError)
}
