package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carvalue/internal/config"
)

func geminiAnswer(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

// newGeminiServer answers generateContent calls; models listed in failing get a 400
func newGeminiServer(t *testing.T, failing ...string) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var called []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		called = append(called, r.URL.Path)
		mu.Unlock()

		for _, m := range failing {
			if strings.Contains(r.URL.Path, "/models/"+m+":") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":400,"message":"model not available","status":"INVALID_ARGUMENT"}}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiAnswer("## Estimated Value\n\n- ₹6,00,000"))
	}))
	t.Cleanup(srv.Close)
	return srv, &called
}

func newTestGemini(t *testing.T, baseURL string) *GeminiClient {
	t.Helper()
	g, err := NewGeminiClient(context.Background(), &config.GeminiConfig{
		APIKey:        "test-key",
		Model:         "gemini-1.5-flash",
		FallbackModel: "gemini-1.0-pro",
		BaseURL:       baseURL,
		Timeout:       5,
		Enabled:       true,
	}, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestGeminiClient_Generate(t *testing.T) {
	srv, called := newGeminiServer(t)
	g := newTestGemini(t, srv.URL)

	text, err := g.Generate(context.Background(), "value my car")
	require.NoError(t, err)
	assert.Equal(t, "## Estimated Value\n\n- ₹6,00,000", text)
	require.Len(t, *called, 1)
	assert.Contains(t, (*called)[0], "gemini-1.5-flash:generateContent")
	assert.Equal(t, "gemini:gemini-1.5-flash", g.Name())
}

func TestGeminiClient_Fallback(t *testing.T) {
	srv, called := newGeminiServer(t, "gemini-1.5-flash")
	g := newTestGemini(t, srv.URL)

	text, err := g.Generate(context.Background(), "value my car")
	require.NoError(t, err)
	assert.Contains(t, text, "Estimated Value")
	require.GreaterOrEqual(t, len(*called), 2)
	assert.Contains(t, (*called)[len(*called)-1], "gemini-1.0-pro:generateContent")
}

func TestGeminiClient_BothModelsFail(t *testing.T) {
	srv, _ := newGeminiServer(t, "gemini-1.5-flash", "gemini-1.0-pro")
	g := newTestGemini(t, srv.URL)

	_, err := g.Generate(context.Background(), "value my car")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback gemini-1.0-pro")
}

func TestNewGeminiClient_Disabled(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), &config.GeminiConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrAIDisabled)
}
