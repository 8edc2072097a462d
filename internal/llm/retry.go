package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"jobtailor/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retrying struct {
	base  Client
	delay time.Duration
}

// WithRetry retries a call once after a short delay when the first attempt
// fails with a transient transport error.
func WithRetry(base Client) Client {
	if base == nil {
		return nil
	}
	return retrying{base: base, delay: retryBaseDelay}
}

func (r retrying) GenerateJSON(ctx context.Context, req Request) (string, error) {
	out, err := r.base.GenerateJSON(ctx, req)
	if err == nil || !ShouldRetry(err) {
		return out, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"attempt": 1,
		"model":   req.Model,
		"error":   err.Error(),
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return r.base.GenerateJSON(ctx, req)
}

// ShouldRetry reports whether err looks like a transient provider failure.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "unavailable") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}
