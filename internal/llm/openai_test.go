package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	openai "github.com/sashabaranov/go-openai"
)

func openAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL + "/v1",
	})
	require.NoError(t, err)
	return p
}

func chatReply(content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	const text = "[問題]\nx+3=5\n|||SPLIT|||\n[解答・解説]\nx=2"
	var got openai.ChatCompletionRequest
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatReply(text, "stop"))
	})

	resp, err := p.Generate(context.Background(), UserPrompt("あなたは数学教師です。", "問題を作ってください。", 256, 0.5))
	require.NoError(t, err)

	assert.Equal(t, text, resp.Text)
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}, resp.Usage)
	assert.Equal(t, "end", resp.StopReason)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "問題を作ってください。", got.Messages[1].Content)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 256, got.MaxCompletionTokens)
}

func TestOpenAIProvider_Truncation(t *testing.T) {
	t.Run("partial text kept", func(t *testing.T) {
		p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatReply("[問題]\nx+", "length"))
		})
		resp, err := p.Generate(context.Background(), UserPrompt("", "x", 8, 0))
		require.NoError(t, err)
		assert.Equal(t, "max_tokens", resp.StopReason)
	})

	t.Run("empty text fails", func(t *testing.T) {
		p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatReply("", "length"))
		})
		_, err := p.Generate(context.Background(), UserPrompt("", "x", 8, 0))
		var maxTok *ErrMaxTokensExceeded
		assert.True(t, errors.As(err, &maxTok), "got %T", err)
	})
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"model": "gpt-4o-mini", "choices": []any{}})
	})

	_, err := p.Generate(context.Background(), UserPrompt("", "x", 10, 0))
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv), "got %T (%v)", err, err)
}

func TestOpenAIProvider_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{http.StatusBadGateway, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := openAIServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "server_error", "message": http.StatusText(tt.status)},
				})
			})
			_, err := p.Generate(context.Background(), UserPrompt("", "x", 10, 0))
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %T (%v)", err, err)
		})
	}
}

func TestNewOpenAIProvider_Validation(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://llm.example.com/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
}
