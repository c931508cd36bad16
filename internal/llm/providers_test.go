package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var explanationSchema = &Schema{
	Name: "test-explanation",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"explanation": map[string]any{"type": "string", "minLength": 1}},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

func serve(t *testing.T, status int, body any, seen *map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 12, "output_tokens": 7},
	}
}

func TestAnthropicGenerate(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, anthropicMessage(`{"explanation":"ser is for identity"}`, "end_turn"), &seen)
	p, err := NewAnthropicProvider(Config{Provider: ProviderAnthropic, APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	req := UserPrompt("You explain Spanish.", "Why ser?")
	req.Schema = explanationSchema
	req.MaxTokens = 200
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, 19, resp.Usage.Total())
	var out struct{ Explanation string }
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, "ser is for identity", out.Explanation)
	assert.Equal(t, "claude-haiku-4-5", seen["model"])
}

func TestAnthropicSchemaViolation(t *testing.T) {
	url := serve(t, http.StatusOK, anthropicMessage(`{"other":1}`, "end_turn"), nil)
	p, err := NewAnthropicProvider(Config{Provider: ProviderAnthropic, APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	req := UserPrompt("", "x")
	req.Schema = explanationSchema
	req.MaxTokens = 50
	_, err = p.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "got %v", err)
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{"bad request", http.StatusBadRequest, func(err error) bool { var e *ErrRequest; return errors.As(err, &e) }},
		{"server error", http.StatusInternalServerError, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]any{"type": "error", "error": map[string]any{"type": "api_error", "message": "nope"}}
			url := serve(t, tt.status, body, nil)
			p, err := NewAnthropicProvider(Config{Provider: ProviderAnthropic, APIKey: "k", BaseURL: url})
			require.NoError(t, err)
			_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %T: %v", err, err)
		})
	}
}

func openAICompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 10, "total_tokens": 40},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var seen map[string]any
	url := serve(t, http.StatusOK, openAICompletion(`{"explanation":"estar is for states"}`, "stop"), &seen)
	p, err := NewOpenAIProvider(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	req := UserPrompt("system text", "Why estar?")
	req.Schema = explanationSchema
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 30, resp.Usage.InputTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Model)

	msgs, _ := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	format, _ := seen["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAITruncatedStructuredOutput(t *testing.T) {
	url := serve(t, http.StatusOK, openAICompletion(`{"explan`, "length"), nil)
	p, err := NewOpenAIProvider(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	req := UserPrompt("", "x")
	req.Schema = explanationSchema
	_, err = p.Generate(context.Background(), req)
	var mt *ErrMaxTokensExceeded
	assert.True(t, errors.As(err, &mt), "got %v", err)
}

func TestOpenAIRateLimit(t *testing.T) {
	url := serve(t, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}}, nil)
	p, err := NewOpenAIProvider(Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), UserPrompt("", "x"))
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl), "got %T: %v", err, err)
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{"type": "string", "description": "why"},
			"tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string", "enum": []any{"a", "b"}}},
		},
		"required": []any{"explanation"},
	})
	require.Contains(t, s.Properties, "explanation")
	assert.Equal(t, "why", s.Properties["explanation"].Description)
	assert.Equal(t, []string{"explanation"}, s.Required)
	assert.Equal(t, []string{"a", "b"}, s.Properties["tags"].Items.Enum)
}

func TestProvidersNeedKey(t *testing.T) {
	_, err := NewAnthropicProvider(Config{})
	assert.Error(t, err)
	_, err = NewOpenAIProvider(Config{})
	assert.Error(t, err)
	_, err = NewGeminiProvider(context.Background(), Config{})
	assert.Error(t, err)
}
