package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "requestId"
	RequestIDHeader = "X-Request-Id"
)

// RequestID tags every request with an id, trusting an inbound X-Request-Id
// only when it looks like one we could have issued.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := cleanID(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the id set by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}
