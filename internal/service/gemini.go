package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"carvalue/internal/config"
)

// GeminiClient generates text with Google's Gemini models. When the primary
// model fails the fallback model is tried once.
type GeminiClient struct {
	client        *genai.Client
	model         string
	fallbackModel string
	timeout       time.Duration
	logger        *zap.Logger
}

// NewGeminiClient creates a Gemini client from configuration
func NewGeminiClient(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if !cfg.Enabled {
		return nil, ErrAIDisabled
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.Model),
		zap.String("fallback_model", cfg.FallbackModel),
	)

	return &GeminiClient{
		client:        client,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		timeout:       time.Duration(cfg.Timeout) * time.Second,
		logger:        logger,
	}, nil
}

// Name implements TextGenerator
func (g *GeminiClient) Name() string {
	return "gemini:" + g.model
}

// Generate implements TextGenerator
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.generate(ctx, g.model, prompt)
	if err == nil || g.fallbackModel == "" || g.fallbackModel == g.model {
		return text, err
	}

	g.logger.Warn("primary Gemini model failed, trying fallback",
		zap.String("model", g.model),
		zap.String("fallback_model", g.fallbackModel),
		zap.Error(err),
	)
	text, fbErr := g.generate(ctx, g.fallbackModel, prompt)
	if fbErr != nil {
		return "", fmt.Errorf("gemini %s: %v; fallback %s: %w", g.model, err, g.fallbackModel, fbErr)
	}
	return text, nil
}

func (g *GeminiClient) generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("GenAI returned no text")
	}
	return text, nil
}

// GenerateStream implements TextStreamer. Streaming uses the primary model
// only; nothing is retried once chunks have been delivered.
func (g *GeminiClient) GenerateStream(ctx context.Context, prompt string, onChunk func(chunk string) error) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var full strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), nil) {
		if err != nil {
			return "", fmt.Errorf("GenAI stream failed: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return "", fmt.Errorf("callback error: %w", err)
		}
	}

	if strings.TrimSpace(full.String()) == "" {
		return "", fmt.Errorf("GenAI stream returned no text")
	}
	return full.String(), nil
}

func (g *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}
