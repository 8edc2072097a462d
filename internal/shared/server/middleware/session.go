package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionIDKey      = "sessionId"
	SessionHeader     = "X-Session-Id"
	SessionCookie     = "jobtailor_session"
	sessionCookieAge  = 30 * 24 * 60 * 60
	maxIDBytes        = 128
)

// Session resolves the browser session from header or cookie, minting one when absent.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		id := cleanID(c.GetHeader(SessionHeader))
		if id == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cleanID(cookie)
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(sessionIDKey, id)
		c.Writer.Header().Set(SessionHeader, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, sessionCookieAge, "/", "", false, true)
		c.Next()
	}
}

// SessionIDFromContext fetches the session ID set by the Session middleware.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(sessionIDKey)
}

// cleanID accepts short ids made of letters, digits, '-' and '_'.
func cleanID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxIDBytes {
		return ""
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ""
		}
	}
	return id
}
