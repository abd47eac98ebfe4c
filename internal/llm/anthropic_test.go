package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-sonnet",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return p
}

func anthropicError(status int, kind string, header map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range header {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		// Keeps the SDK from retrying on its own.
		w.Header().Set("X-Should-Retry", "false")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	var body map[string]any
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "[問題]\n2x=8\n"},
				{"type": "text", "text": "|||SPLIT|||\n[解答・解説]\nx=4"},
			},
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System: "あなたは数学教師です。",
		Messages: []Message{
			{Role: RoleUser, Content: "問題を作ってください。"},
			{Role: RoleAssistant, Content: "はい。"},
			{Role: RoleUser, Content: "一次方程式で。"},
		},
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, "[問題]\n2x=8\n|||SPLIT|||\n[解答・解説]\nx=4", resp.Text)
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, "end", resp.StopReason)

	assert.Equal(t, "claude-sonnet-4-5-20250929", body["model"])
	msgs, _ := body["messages"].([]any)
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
	assert.NotEmpty(t, body["system"])
}

func TestAnthropicProvider_NoTextBlock(t *testing.T) {
	p := anthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{},
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 5, "output_tokens": 0},
		})
	})

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var invalid *ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid), "got %T", err)
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit carries retry-after", func(t *testing.T) {
		p := anthropicServer(t, anthropicError(http.StatusTooManyRequests, "rate_limit_error", map[string]string{"Retry-After": "7"}))
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})

		var rl *ErrRateLimit
		require.True(t, errors.As(err, &rl), "got %T (%v)", err, err)
		assert.Equal(t, 7*time.Second, rl.RetryAfter)
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		p := anthropicServer(t, anthropicError(http.StatusInternalServerError, "api_error", nil))
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})

		var unavail *ErrProviderUnavailable
		assert.True(t, errors.As(err, &unavail), "got %T (%v)", err, err)
	})
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		models map[string]string
		in     string
		want   string
	}{
		{anthropicModels, "claude-sonnet", "claude-sonnet-4-5-20250929"},
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{anthropicModels, "claude-opus-4-1", "claude-opus-4-1"},
		{geminiModels, "gemini-flash", "gemini-2.5-flash"},
		{geminiModels, "gemini-pro", "gemini-2.5-pro"},
		{openaiModels, "gpt-4o", "gpt-4o"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveModel(tt.in, tt.models), tt.in)
	}
}

func TestRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Zero(t, retryAfter(nil))
	assert.Zero(t, retryAfter(h))

	h.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, retryAfter(h))

	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Zero(t, retryAfter(h))

	assert.ErrorIs(t, fromStatus(context.Canceled, 0, nil), context.Canceled)
}
