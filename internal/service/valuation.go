package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"carvalue/internal/config"
	"carvalue/internal/logging"
	"carvalue/internal/model"
	"carvalue/internal/utils"
)

// FallbackMessage is returned instead of an error when no valuation could be produced
const FallbackMessage = "There was an error generating your car valuation. Please try again later."

// Valuation sources recorded in the history
const (
	SourceForm = "form"
	SourceChat = "chat"
)

// PromptEstimator values a car by prompting a generative model
type PromptEstimator struct {
	gen      TextGenerator
	currency string
}

// NewPromptEstimator wraps a text generator
func NewPromptEstimator(gen TextGenerator, currency string) *PromptEstimator {
	return &PromptEstimator{gen: gen, currency: currency}
}

// Name implements Estimator
func (p *PromptEstimator) Name() string {
	return p.gen.Name()
}

// Generator exposes the underlying model, e.g. for attribute extraction
func (p *PromptEstimator) Generator() TextGenerator {
	return p.gen
}

// Estimate implements Estimator
func (p *PromptEstimator) Estimate(ctx context.Context, v model.VehicleAttributes) (string, error) {
	return p.gen.Generate(ctx, BuildValuationPrompt(v, p.currency))
}

// EstimateStream implements StreamingEstimator. Generators without streaming
// support deliver the whole text as one chunk.
func (p *PromptEstimator) EstimateStream(ctx context.Context, v model.VehicleAttributes, onChunk func(chunk string) error) (string, error) {
	prompt := BuildValuationPrompt(v, p.currency)
	if streamer, ok := p.gen.(TextStreamer); ok {
		return streamer.GenerateStream(ctx, prompt, onChunk)
	}
	text, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return text, onChunk(text)
}

// NewEstimator picks the valuation backend from configuration.
// "auto" prefers Gemini, then OpenAI, then the offline heuristic.
func NewEstimator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Estimator, error) {
	provider := cfg.Valuation.Provider
	if provider == "auto" {
		switch {
		case cfg.Gemini.Enabled:
			provider = "gemini"
		case cfg.OpenAI.Enabled:
			provider = "openai"
		default:
			provider = "heuristic"
		}
	}

	switch provider {
	case "gemini":
		client, err := NewGeminiClient(ctx, &cfg.Gemini, logger)
		if err != nil {
			return nil, err
		}
		return NewPromptEstimator(client, cfg.Valuation.Currency), nil
	case "openai":
		return NewPromptEstimator(NewOpenAIClient(&cfg.OpenAI, logger), cfg.Valuation.Currency), nil
	case "heuristic":
		logger.Warn("no AI backend configured, using offline heuristic valuations")
		return NewHeuristicEstimator(), nil
	}
	return nil, fmt.Errorf("unknown valuation provider %q", provider)
}

// ValuationLogger records finished valuations
type ValuationLogger interface {
	LogValuation(ctx context.Context, rec *model.ValuationRecord) error
}

// ValuationService is the boundary to the valuation collaborator. It never
// returns an error: failures become FallbackMessage with OK=false.
type ValuationService struct {
	estimator Estimator
	history   ValuationLogger
	logger    *zap.Logger
}

// NewValuationService creates a valuation service. history may be nil.
func NewValuationService(estimator Estimator, history ValuationLogger, logger *zap.Logger) *ValuationService {
	return &ValuationService{
		estimator: estimator,
		history:   history,
		logger:    logger,
	}
}

// ProviderName returns the name of the configured backend
func (s *ValuationService) ProviderName() string {
	return s.estimator.Name()
}

// Estimate values a complete vehicle description
func (s *ValuationService) Estimate(ctx context.Context, v model.VehicleAttributes, source string) model.Valuation {
	defer logging.LogDuration(ctx, "ValuationService.Estimate")()
	start := time.Now()
	text, err := s.estimator.Estimate(ctx, v)
	return s.finish(v, source, start, text, err)
}

// EstimateStream values a vehicle and forwards text chunks as they arrive.
// Chunks already delivered are not retracted on failure; the returned
// Valuation carries the fallback text in that case.
func (s *ValuationService) EstimateStream(ctx context.Context, v model.VehicleAttributes, source string, onChunk func(chunk string) error) model.Valuation {
	defer logging.LogDuration(ctx, "ValuationService.EstimateStream")()
	start := time.Now()

	var (
		text string
		err  error
	)
	if streaming, ok := s.estimator.(StreamingEstimator); ok {
		text, err = streaming.EstimateStream(ctx, v, onChunk)
	} else {
		text, err = s.estimator.Estimate(ctx, v)
		if err == nil {
			err = onChunk(text)
		}
	}
	return s.finish(v, source, start, text, err)
}

func (s *ValuationService) finish(v model.VehicleAttributes, source string, start time.Time, text string, err error) model.Valuation {
	took := time.Since(start).Milliseconds()
	text = utils.StripCodeFence(text)
	result := model.Valuation{
		Text:     text,
		Provider: s.estimator.Name(),
		OK:       true,
		Took:     took,
	}

	if err == nil && text == "" {
		err = fmt.Errorf("empty valuation text")
	}
	if err != nil {
		s.logger.Error("Error generating car valuation",
			zap.String("provider", result.Provider),
			zap.String("make", v.Make),
			zap.String("model", v.Model),
			zap.Error(err),
		)
		result.Text = FallbackMessage
		result.OK = false
	} else {
		s.logger.Info("valuation generated",
			zap.String("provider", result.Provider),
			zap.String("source", source),
			zap.Int64("took_ms", took),
		)
	}

	if s.history != nil {
		rec := newValuationRecord(v, source, result)
		// recorded off the request path
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.history.LogValuation(ctx, rec); err != nil {
				s.logger.Warn("failed to record valuation", zap.Error(err))
			}
		}()
	}

	return result
}

func newValuationRecord(v model.VehicleAttributes, source string, val model.Valuation) *model.ValuationRecord {
	rec := &model.ValuationRecord{
		Source:         source,
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Mileage:        v.Mileage,
		Condition:      string(v.Condition),
		Provider:       val.Provider,
		Succeeded:      val.OK,
		Valuation:      val.Text,
		ResponseTimeMs: int(val.Took),
	}
	if v.AdditionalInfo != "" {
		info := v.AdditionalInfo
		rec.AdditionalInfo = &info
	}
	return rec
}
