package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobtailor/internal/llm"
	"jobtailor/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
	maxErrorBody   = 512
)

// Client calls Chat Completions in JSON mode. The configured model replaces
// whatever model name the request carries.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("OPENAI_MODEL is required")
	}
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model          string    `json:"model"`
	Messages       []message `json:"messages"`
	Temperature    float32   `json:"temperature"`
	MaxTokens      int32     `json:"max_tokens,omitempty"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type completionResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// GenerateJSON sends the prompt with the schema embedded in the system message.
func (c *Client) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	body := completionRequest{
		Model:     c.model,
		Messages:  []message{{Role: "system", Content: systemPrompt(req.Schema)}, {Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxOutputTokens,
	}
	body.ResponseFormat.Type = "json_object"
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}

	var parsed completionResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		} else if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return "", &llm.StatusError{Provider: "openai", Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode openai response: %w", decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}

	choice := parsed.Choices[0]
	telemetry.Info("llm.response", map[string]any{
		"provider":          "openai",
		"model":             c.model,
		"finish_reason":     choice.FinishReason,
		"prompt_tokens":     parsed.Usage.PromptTokens,
		"completion_tokens": parsed.Usage.CompletionTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return strings.TrimSpace(choice.Message.Content), nil
}

func systemPrompt(schema *llm.Schema) string {
	const base = "Respond with a single JSON object only."
	if schema == nil {
		return base
	}
	encoded, err := json.Marshal(schema.JSONSchema())
	if err != nil {
		return base
	}
	return base + " The object must conform to this JSON Schema:\n" + string(encoded)
}

var _ llm.Client = (*Client)(nil)
