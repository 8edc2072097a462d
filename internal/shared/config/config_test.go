package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"LLM_PROVIDER", "PAYMENT_DELAY_MS", "PDF_RENDERER", "ANALYSIS_MODEL", "TAILORING_MODEL", "GEMINI_API_KEY", "API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.LLMProvider)
	}
	if cfg.PaymentDelay != 2*time.Second {
		t.Fatalf("expected 2s payment delay, got %s", cfg.PaymentDelay)
	}
	if cfg.PDFRenderer != "fpdf" {
		t.Fatalf("expected fpdf renderer, got %q", cfg.PDFRenderer)
	}
	if cfg.AnalysisModel != "gemini-3-flash-preview" || cfg.TailoringModel != "gemini-3-pro-preview" {
		t.Fatalf("unexpected models: %q %q", cfg.AnalysisModel, cfg.TailoringModel)
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "GEMINI_API_KEY=from-file\nPAYMENT_DELAY_MS=50\nLLM_PROVIDER=openai\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PAYMENT_DELAY_MS", "")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("PAYMENT_DELAY_MS")

	cfg := Load()
	if cfg.GeminiAPIKey != "from-file" {
		t.Fatalf("expected key from .env, got %q", cfg.GeminiAPIKey)
	}
	if cfg.PaymentDelay != 50*time.Millisecond {
		t.Fatalf("expected 50ms, got %s", cfg.PaymentDelay)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected env to win over .env, got %q", cfg.LLMProvider)
	}
}
