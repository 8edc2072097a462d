package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Client abstracts the hosted model. GenerateJSON returns the raw text of the
// first candidate, which callers parse and validate themselves.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
}

// Request describes one structured-output call.
type Request struct {
	Model  string
	Prompt string
	Schema *Schema
	// Zero means provider default.
	MaxOutputTokens int32
	ThinkingBudget  int32
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM provider not configured")

// StatusError is a provider's HTTP-level rejection.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d: %s", e.Provider, e.Code, e.Message)
}

// Transient reports whether the provider may accept the same call later.
func (e *StatusError) Transient() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// PlaceholderClient is used when no provider credentials are set.
type PlaceholderClient struct{}

// GenerateJSON returns ErrNotConfigured.
func (PlaceholderClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	return "", ErrNotConfigured
}

// CleanJSON strips markdown code fences some models wrap around JSON.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag line.
		s = s[nl+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
