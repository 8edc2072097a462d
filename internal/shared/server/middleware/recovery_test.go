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

func TestRecoveryReturnsErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	telemetry.SetOutput(&logs)
	defer telemetry.SetOutput(nil)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("exploded") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error.Code != "internal_error" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), `"http.panic"`) || !strings.Contains(logs.String(), "req-42") {
		t.Fatalf("expected panic log with request id, got %s", logs.String())
	}
}

func TestRequestIDKeepsValidInboundID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFromContext(c)) })

	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{name: "valid", inbound: "abc-123", keep: true},
		{name: "missing", inbound: ""},
		{name: "injection", inbound: "abc\r\nSet-Cookie: x", keep: false},
		{name: "too long", inbound: strings.Repeat("a", 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != w.Body.String() {
				t.Fatalf("header %q and context %q disagree", got, w.Body.String())
			}
			if tt.keep != (got == tt.inbound) {
				t.Fatalf("inbound %q produced %q", tt.inbound, got)
			}
		})
	}
}
