package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jobtailor/internal/shared/telemetry"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			t.Fatalf("decode log json %q: %v", line, err)
		}
		out = append(out, payload)
	}
	return out
}

func TestLoggingRecordsStepAndSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(nil)

	router := gin.New()
	router.Use(RequestID(), Session(), Logging())
	router.POST("/api/v1/wizard/start", func(c *gin.Context) {
		c.Set(StepKey, "upload_cv")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wizard/start", nil)
	req.Header.Set(SessionHeader, "tab1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d", len(lines))
	}
	got := lines[0]
	for _, key := range []string{"ts", "request_id", "duration_ms", "bytes"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if got["msg"] != "request.complete" || got["session_id"] != "tab1" || got["step"] != "upload_cv" {
		t.Fatalf("unexpected log line %v", got)
	}
	if got["route"] != "/api/v1/wizard/start" || got["status"] != float64(http.StatusOK) {
		t.Fatalf("unexpected route/status %v %v", got["route"], got["status"])
	}
}

func TestLoggingSkipsHealthAndUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	defer telemetry.SetOutput(nil)

	router := gin.New()
	router.Use(Logging("/api/v1/health"))
	router.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	lines := logLines(t, &buf)
	if len(lines) != 1 || lines[0]["route"] != "unmatched" {
		t.Fatalf("expected only the unmatched request to be logged, got %v", lines)
	}
}
