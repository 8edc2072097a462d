package tailoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtailor/internal/llm"
	"jobtailor/internal/shared/metrics"
	"jobtailor/internal/shared/telemetry"
)

const (
	DefaultModel    = "gemini-3-pro-preview"
	maxOutputTokens = 4000
	thinkingBudget  = 1000
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from AI tailoring model")

// Bundle is the generated application package.
type Bundle struct {
	CV          string `json:"cv"`
	CoverLetter string `json:"coverLetter"`
	EmailBody   string `json:"emailBody"`
}

// TailoringError is any failure to obtain a usable bundle.
type TailoringError struct {
	Err error
}

func (e *TailoringError) Error() string { return e.Err.Error() }

func (e *TailoringError) Unwrap() error { return e.Err }

var responseSchema = llm.Object(
	[]string{"cv", "coverLetter", "emailBody"},
	llm.Prop("cv", llm.String("Markdown formatted tailored CV")),
	llm.Prop("coverLetter", llm.String("Professional cover letter including contact header placeholders")),
	llm.Prop("emailBody", llm.String("A concise, effective outreach email")),
)

// Service generates a tailored CV, cover letter and outreach email.
type Service struct {
	LLM   llm.Client
	Model string
}

// Tailor makes exactly one model call. Every failure is a *TailoringError.
func (s *Service) Tailor(ctx context.Context, resumeText, jobText string) (Bundle, error) {
	start := time.Now()
	bundle, err := s.tailor(ctx, resumeText, jobText)
	elapsed := time.Since(start)
	metrics.LLMCall("tailoring", elapsed, err)

	if err != nil {
		telemetry.Error("tailoring.failed", map[string]any{
			"model":       s.model(),
			"duration_ms": elapsed.Milliseconds(),
			"error":       err.Error(),
		})
		return Bundle{}, &TailoringError{Err: err}
	}
	telemetry.Info("tailoring.completed", map[string]any{
		"model":              s.model(),
		"duration_ms":        elapsed.Milliseconds(),
		"cv_chars":           len(bundle.CV),
		"cover_letter_chars": len(bundle.CoverLetter),
	})
	return bundle, nil
}

func (s *Service) tailor(ctx context.Context, resumeText, jobText string) (Bundle, error) {
	if s.LLM == nil {
		return Bundle{}, llm.ErrNotConfigured
	}
	raw, err := s.LLM.GenerateJSON(ctx, llm.Request{
		Model:           s.model(),
		Prompt:          BuildPrompt(resumeText, jobText),
		Schema:          responseSchema,
		MaxOutputTokens: maxOutputTokens,
		ThinkingBudget:  thinkingBudget,
	})
	if err != nil {
		return Bundle{}, err
	}
	raw = llm.CleanJSON(raw)
	if raw == "" {
		return Bundle{}, ErrEmptyResponse
	}
	if err := responseSchema.Validate(raw); err != nil {
		return Bundle{}, fmt.Errorf("tailoring response: %w", err)
	}
	var bundle Bundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return Bundle{}, fmt.Errorf("tailoring response parse: %w", err)
	}
	return bundle, nil
}

func (s *Service) model() string {
	if strings.TrimSpace(s.Model) == "" {
		return DefaultModel
	}
	return s.Model
}
