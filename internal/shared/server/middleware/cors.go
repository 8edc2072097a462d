package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Methods":  strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ","),
	"Access-Control-Allow-Headers":  strings.Join([]string{"Content-Type", SessionHeader, RequestIDHeader}, ", "),
	"Access-Control-Expose-Headers": strings.Join([]string{RequestIDHeader, SessionHeader, "Content-Disposition", "Retry-After"}, ", "),
	"Access-Control-Max-Age":        "600",
}

// CORS answers for the configured origins. A "*" entry allows any origin; the
// caller's origin is echoed back because responses carry the session cookie.
// Preflights stop here with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	anyOrigin := false
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			anyOrigin = true
		default:
			origins[o] = true
		}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && (anyOrigin || origins[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Credentials", "true")
			for k, v := range corsHeaders {
				h.Set(k, v)
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
