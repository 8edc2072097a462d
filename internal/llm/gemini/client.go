package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"jobtailor/internal/llm"
)

// generator is the part of genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client on the Gemini API.
type Client struct {
	models generator
}

// NewClient constructs a Gemini client for apiKey.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{models: c.Models}, nil
}

// GenerateJSON asks for application/json output constrained by req.Schema.
func (c *Client) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", errors.New("gemini model is required")
	}
	resp, err := c.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), buildConfig(req))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini generate model=%s: %w", req.Model, &llm.StatusError{Provider: "gemini", Code: apiErr.Code, Message: apiErr.Message})
		}
		return "", fmt.Errorf("gemini generate model=%s: %w", req.Model, err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}

func buildConfig(req llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toSchema(req.Schema),
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.MaxOutputTokens
	}
	if req.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(req.ThinkingBudget)}
	}
	return cfg
}

func toSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        kindToType(s.Kind),
		Description: s.Description,
		Required:    append([]string(nil), s.Required...),
		Items:       toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = toSchema(p.Schema)
			out.PropertyOrdering = append(out.PropertyOrdering, p.Name)
		}
	}
	return out
}

func kindToType(k llm.Kind) genai.Type {
	switch k {
	case llm.KindObject:
		return genai.TypeObject
	case llm.KindArray:
		return genai.TypeArray
	case llm.KindNumber:
		return genai.TypeNumber
	default:
		return genai.TypeString
	}
}

var _ llm.Client = (*Client)(nil)
