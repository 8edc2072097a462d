package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobtailor/internal/shared/telemetry"
)

// StepKey is set by handlers to the wizard step the response left the session in.
const StepKey = "wizardStep"

// Logging writes one "request.complete" line per request. Preflights and
// health probes are not logged.
func Logging(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"session_id":  SessionIDFromContext(c),
			"method":      c.Request.Method,
			"route":       route,
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"step":        c.GetString(StepKey),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		})
	}
}
