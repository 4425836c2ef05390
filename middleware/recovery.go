package middleware

import (
	"net/http"
	"runtime/debug"

	"dzlegal-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 envelope and logs the stack
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "حدث خطأ داخلي، يرجى المحاولة لاحقاً",
					},
					"request_id": GetRequestID(c),
				})
			}
		}()

		c.Next()
	}
}
