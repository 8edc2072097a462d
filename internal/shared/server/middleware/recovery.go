package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"jobtailor/internal/shared/server/respond"
	"jobtailor/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged 500 with the usual error body.
// Gin's own stack dump is discarded in favour of one structured log line.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"session_id": SessionIDFromContext(c),
			"route":      c.FullPath(),
			"method":     c.Request.Method,
			"panic":      rec,
			"stack":      string(debug.Stack()),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	})
}
