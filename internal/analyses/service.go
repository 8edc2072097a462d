package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobtailor/internal/llm"
	"jobtailor/internal/shared/metrics"
	"jobtailor/internal/shared/telemetry"
)

// DefaultModel is used when Service.Model is empty.
const DefaultModel = "gemini-3-flash-preview"

var responseSchema = llm.Object(
	[]string{"score", "missingKeywords", "strengths", "suggestions"},
	llm.Prop("score", llm.Number("")),
	llm.Prop("missingKeywords", llm.Array(llm.String(""))),
	llm.Prop("strengths", llm.Array(llm.String(""))),
	llm.Prop("suggestions", llm.Array(llm.String(""))),
)

// Service scores a résumé against a job description.
type Service struct {
	LLM   llm.Client
	Model string
}

// Analyze makes one model call. Every failure is an *AnalysisError.
func (s *Service) Analyze(ctx context.Context, resumeText, jobText string) (Result, error) {
	start := time.Now()
	res, err := s.analyze(ctx, resumeText, jobText)
	elapsed := time.Since(start)
	metrics.LLMCall("analysis", elapsed, err)

	if err != nil {
		telemetry.Error("analysis.failed", map[string]any{
			"model":       s.model(),
			"duration_ms": elapsed.Milliseconds(),
			"error":       err.Error(),
		})
		return Result{}, &AnalysisError{Err: err}
	}
	telemetry.Info("analysis.completed", map[string]any{
		"model":       s.model(),
		"duration_ms": elapsed.Milliseconds(),
		"score":       res.Score,
	})
	return res, nil
}

func (s *Service) analyze(ctx context.Context, resumeText, jobText string) (Result, error) {
	if s.LLM == nil {
		return Result{}, llm.ErrNotConfigured
	}
	raw, err := s.LLM.GenerateJSON(ctx, llm.Request{
		Model:  s.model(),
		Prompt: BuildPrompt(resumeText, jobText),
		Schema: responseSchema,
	})
	if err != nil {
		return Result{}, err
	}
	raw = llm.CleanJSON(raw)
	if raw == "" {
		return Result{}, ErrEmptyResponse
	}
	if err := responseSchema.Validate(raw); err != nil {
		return Result{}, fmt.Errorf("analysis response: %w", err)
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, fmt.Errorf("analysis response parse: %w", err)
	}
	res.normalize()
	return res, nil
}

func (s *Service) model() string {
	if strings.TrimSpace(s.Model) == "" {
		return DefaultModel
	}
	return s.Model
}

// BuildPrompt renders the analysis instruction with both documents embedded.
func BuildPrompt(resumeText, jobText string) string {
	var b strings.Builder
	b.WriteString("Analyze the following CV against the provided Job Description. ")
	b.WriteString("Provide an ATS compatibility score (0-100) and specific improvement suggestions.\n\n")
	b.WriteString("CV:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\nJob Description:\n")
	b.WriteString(jobText)
	return b.String()
}
