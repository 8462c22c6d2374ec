package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carvalue/internal/config"
)

func newTestOpenAI(baseURL string) *OpenAIClient {
	return NewOpenAIClient(&config.OpenAIConfig{
		APIKey:          "sk-test",
		APIBase:         baseURL,
		ChatModel:       "gpt-4o-mini",
		ChatTemperature: 0.4,
		ChatMaxTokens:   512,
		ChatExtraBody:   `{"chat_template_kwargs":{"thinking":false}}`,
		Timeout:         5,
		Enabled:         true,
	}, zap.NewNop())
}

func TestOpenAIClient_Generate(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"  ## Value  "},"finish_reason":"stop"}],"usage":{"total_tokens":42}}`)
	}))
	defer srv.Close()

	client := newTestOpenAI(srv.URL + "/v1/")
	text, err := client.Generate(context.Background(), "value my car")
	require.NoError(t, err)
	assert.Equal(t, "## Value", text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.4, got.Temperature, 1e-9)
	assert.Equal(t, 512, got.MaxTokens)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "value my car", got.Messages[0].Content)
	assert.Contains(t, got.ExtraBody, "chat_template_kwargs")
}

func TestOpenAIClient_GenerateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer empty.Close()
	_, err = newTestOpenAI(empty.URL).Generate(context.Background(), "x")
	assert.Error(t, err)

	disabled := NewOpenAIClient(&config.OpenAIConfig{APIBase: srv.URL}, zap.NewNop())
	_, err = disabled.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAIDisabled)
}

func TestOpenAIClient_GenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"## Estimated \"}}]}\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Value\"},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	var chunks []string
	text, err := newTestOpenAI(srv.URL).GenerateStream(context.Background(), "value my car", func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "## Estimated Value", text)
	assert.Equal(t, []string{"## Estimated ", "Value"}, chunks)
}

func TestOpenAIClient_StreamCallbackError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	_, err := newTestOpenAI(srv.URL).GenerateStream(context.Background(), "x", func(string) error {
		return fmt.Errorf("client gone")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client gone")
}

func TestSSEChunkParser(t *testing.T) {
	plain := chunkParserFor("https://api.openai.com/v1")
	withReasoning := chunkParserFor("https://integrate.api.nvidia.com/v1")
	data := []byte(`{"choices":[{"delta":{"content":"hi","reasoning_content":"thinking"},"finish_reason":"stop"}]}`)

	chunk, err := plain.ParseChunk(data)
	require.NoError(t, err)
	assert.Equal(t, "hi", chunk.Content)
	assert.Empty(t, chunk.ThinkingContent)
	assert.True(t, chunk.Done)

	chunk, err = withReasoning.ParseChunk(data)
	require.NoError(t, err)
	assert.Equal(t, "thinking", chunk.ThinkingContent)

	chunk, err = plain.ParseChunk([]byte(`{"choices":[]}`))
	require.NoError(t, err)
	assert.Empty(t, chunk.Content)

	_, err = plain.ParseChunk([]byte(`nope`))
	assert.Error(t, err)
}
