package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, header http.Header, body any) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var seen []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		seen = append(seen, payload)
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

var feedbackJSON = `{"score":64,"tips":["explain tradeoffs"]}`

func scoreRequest() Request {
	return Request{
		System:    "You grade interviews.",
		Messages:  UserPrompt("grade this"),
		Schema:    scoreSchema(),
		MaxTokens: 512,
	}
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 120, "output_tokens": 40},
	}
}

func TestAnthropicGenerate(t *testing.T) {
	srv, seen := serve(t, http.StatusOK, nil, anthropicMessage(feedbackJSON, "end_turn"))
	p, err := NewAnthropicProvider(BackendConfig{APIKey: "k", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", p.ModelID())

	resp, err := p.Generate(context.Background(), scoreRequest())
	require.NoError(t, err)
	assert.JSONEq(t, feedbackJSON, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 120, OutputTokens: 40, TotalTokens: 160}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)

	require.Len(t, *seen, 1)
	assert.Equal(t, "claude-haiku-4-5", (*seen)[0]["model"])
	assert.Contains(t, (*seen)[0], "output_config")
}

func TestAnthropicTruncatedStructuredOutput(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, nil, anthropicMessage(`{"score":6`, "max_tokens"))
	p, err := NewAnthropicProvider(BackendConfig{APIKey: "k", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), scoreRequest())
	var truncated *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &truncated)
}

func TestAnthropicErrors(t *testing.T) {
	errBody := map[string]any{"type": "error", "error": map[string]any{"type": "rate_limit_error", "message": "slow down"}}

	srv, _ := serve(t, http.StatusTooManyRequests, http.Header{"Retry-After": {"3"}}, errBody)
	p, err := NewAnthropicProvider(BackendConfig{APIKey: "k", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), scoreRequest())
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 3*time.Second, rl.RetryAfter)

	srv, _ = serve(t, http.StatusInternalServerError, nil, errBody)
	p, err = NewAnthropicProvider(BackendConfig{APIKey: "k", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), scoreRequest())
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 30, "total_tokens": 120},
	}
}

func TestOpenAIGenerate(t *testing.T) {
	srv, seen := serve(t, http.StatusOK, nil, chatCompletion(feedbackJSON, "stop"))
	p, err := NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), scoreRequest())
	require.NoError(t, err)
	assert.JSONEq(t, feedbackJSON, string(resp.Content))
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, 120, resp.Usage.TotalTokens)

	req := (*seen)[0]
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	format := req["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIInvalidOutput(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, nil, chatCompletion(`{"score":"high"}`, "stop"))
	p, err := NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), scoreRequest())
	var invalid *ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestOpenAIErrors(t *testing.T) {
	body := map[string]any{"error": map[string]any{"type": "requests", "message": "limit", "code": "rate_limit_exceeded"}}
	srv, _ := serve(t, http.StatusTooManyRequests, nil, body)
	p, err := NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), scoreRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)

	srv, _ = serve(t, http.StatusBadGateway, nil, map[string]any{"error": map[string]any{"message": "upstream"}})
	p, err = NewOpenAIProvider(BackendConfig{APIKey: "k", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), scoreRequest())
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestOpenRouterUsesChatCompletions(t *testing.T) {
	_, err := NewOpenRouterProvider(BackendConfig{Model: "openai/gpt-4o-mini"})
	assert.Error(t, err)

	srv, seen := serve(t, http.StatusOK, nil, chatCompletion(feedbackJSON, "stop"))
	p, err := NewOpenRouterProvider(BackendConfig{APIKey: "k", Model: "openai/gpt-4o-mini", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, p.ProviderName())
	assert.Equal(t, "openai/gpt-4o-mini", p.ModelID())

	_, err = p.Generate(context.Background(), scoreRequest())
	require.NoError(t, err)
	assert.Equal(t, "openai/gpt-4o-mini", (*seen)[0]["model"])
}

func TestGeminiGenerate(t *testing.T) {
	body := map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": feedbackJSON}}},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 80, "candidatesTokenCount": 20, "totalTokenCount": 100},
		"modelVersion":  "gemini-2.5-flash",
	}
	srv, seen := serve(t, http.StatusOK, nil, body)
	p, err := NewGeminiProvider(context.Background(), BackendConfig{APIKey: "k", Model: "gemini-flash", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", p.ModelID())

	resp, err := p.Generate(context.Background(), scoreRequest())
	require.NoError(t, err)
	assert.JSONEq(t, feedbackJSON, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 80, OutputTokens: 20, TotalTokens: 100}, resp.Usage)
	assert.Contains(t, (*seen)[0], "generationConfig")
}

func TestGeminiRateLimit(t *testing.T) {
	body := map[string]any{"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}
	srv, _ := serve(t, http.StatusTooManyRequests, nil, body)
	p, err := NewGeminiProvider(context.Background(), BackendConfig{APIKey: "k", Model: "gemini-flash", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), scoreRequest())
	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestGeminiSchemaConversion(t *testing.T) {
	s := geminiSchema(scoreSchema().Definition)
	assert.Equal(t, "OBJECT", strings.ToUpper(string(s.Type)))
	require.Contains(t, s.Properties, "tips")
	assert.Equal(t, "ARRAY", string(s.Properties["tips"].Type))
	assert.Equal(t, "STRING", string(s.Properties["tips"].Items.Type))
	require.NotNil(t, s.Properties["tips"].MinItems)
	assert.EqualValues(t, 1, *s.Properties["tips"].MinItems)
	assert.Equal(t, []string{"weak", "average", "strong"}, s.Properties["band"].Enum)
	assert.ElementsMatch(t, []string{"score", "tips"}, s.Required)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-5", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "claude-opus-4-1", resolveModel("claude-opus-4-1", anthropicModels))
}
