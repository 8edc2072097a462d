package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return Object([]string{"score", "tags"},
		Prop("score", Number("0-100")),
		Prop("tags", Array(String(""))),
	)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: ` {"a":1} `, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```\n", want: `{"a":1}`},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestSchemaJSONSchemaShape(t *testing.T) {
	doc := testSchema().JSONSchema()
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []string{"score", "tags"}, doc["required"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	tags, ok := props["tags"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "array", tags["type"])
	assert.Equal(t, map[string]any{"type": "string"}, tags["items"])
}

func TestSchemaValidate(t *testing.T) {
	s := testSchema()

	require.NoError(t, s.Validate(`{"score": 62, "tags": ["go"]}`))

	err := s.Validate(`{"score": "high"}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.GreaterOrEqual(t, len(ve.Errors), 2)

	err = s.Validate(`not json`)
	require.Error(t, err)
	assert.False(t, errors.As(err, &ve))
}

func TestPlaceholderClient(t *testing.T) {
	_, err := PlaceholderClient{}.GenerateJSON(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type flakyClient struct {
	errs  []error
	calls int
}

func (f *flakyClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return `{}`, nil
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	base := &flakyClient{errs: []error{errors.New("connection reset by peer")}}
	c := retrying{base: base, delay: 0}

	out, err := c.GenerateJSON(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, `{}`, out)
	assert.Equal(t, 2, base.calls)
}

func TestWithRetrySkipsPermanentErrors(t *testing.T) {
	base := &flakyClient{errs: []error{errors.New("invalid api key")}}
	c := retrying{base: base, delay: 0}

	_, err := c.GenerateJSON(context.Background(), Request{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, 1, base.calls)
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(context.DeadlineExceeded))
	assert.True(t, ShouldRetry(errors.New("openai request timeout: x")))
	assert.False(t, ShouldRetry(ErrNotConfigured))
	assert.False(t, ShouldRetry(nil))
	assert.True(t, ShouldRetry(fmt.Errorf("wrapped: %w", &StatusError{Provider: "openai", Code: 503})))
	assert.True(t, ShouldRetry(&StatusError{Provider: "gemini", Code: 429}))
	assert.False(t, ShouldRetry(&StatusError{Provider: "openai", Code: 400, Message: "bad request"}))
}
