package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"carvalue/internal/model"
	"carvalue/internal/utils"
)

// FieldFiller recovers required fields the keyword extractor could not find
type FieldFiller interface {
	Fill(ctx context.Context, utterance string, missing []string, currentYear int) (model.VehicleAttributes, error)
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// AIFieldExtractor asks a generative model for missing fields and keeps only
// answers that pass the same checks as the keyword extractor
type AIFieldExtractor struct {
	gen    TextGenerator
	logger *zap.Logger
}

// NewAIFieldExtractor creates a model-backed field filler
func NewAIFieldExtractor(gen TextGenerator, logger *zap.Logger) *AIFieldExtractor {
	return &AIFieldExtractor{gen: gen, logger: logger}
}

// Fill implements FieldFiller. Only the requested fields are ever set.
func (e *AIFieldExtractor) Fill(ctx context.Context, utterance string, missing []string, currentYear int) (model.VehicleAttributes, error) {
	var out model.VehicleAttributes
	if len(missing) == 0 || strings.TrimSpace(utterance) == "" {
		return out, nil
	}

	content, err := e.gen.Generate(ctx, BuildExtractionPrompt(utterance, missing))
	if err != nil {
		return out, fmt.Errorf("AI extraction failed: %w", err)
	}

	var resp AIAttributesResponse
	if err := utils.ParseAIJSON(content, &resp); err != nil {
		e.logger.Debug("unparseable extraction answer", zap.String("content", utils.Truncate(content, 200)))
		return out, fmt.Errorf("failed to parse extraction answer: %w", err)
	}

	for _, field := range missing {
		switch field {
		case model.FieldMake:
			out.Make = titleWord(string(resp.Make))
		case model.FieldModel:
			out.Model = titleWord(string(resp.Model))
		case model.FieldYear:
			if y, err := strconv.Atoi(string(resp.Year)); err == nil && y >= 1900 && y <= currentYear+1 {
				out.Year = strconv.Itoa(y)
			}
		case model.FieldMileage:
			m := strings.ReplaceAll(string(resp.Mileage), ",", "")
			if digitsOnly.MatchString(m) {
				out.Mileage = m
			}
		case model.FieldCondition:
			if c := model.Condition(strings.ToLower(string(resp.Condition))); c.Valid() {
				out.Condition = c
			}
		}
	}

	e.logger.Debug("AI extraction result",
		zap.Strings("asked", missing),
		zap.String("make", out.Make),
		zap.String("model", out.Model),
		zap.String("year", out.Year),
		zap.String("mileage", out.Mileage),
		zap.String("condition", string(out.Condition)),
	)
	return out, nil
}

func titleWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
