package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"carvalue/internal/model"
)

// TextGenerator is implemented by generative model backends
type TextGenerator interface {
	// Name identifies the backend in logs and responses
	Name() string

	// Generate sends a single prompt and returns the model's text
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextStreamer is implemented by backends that can stream their answer.
// onChunk receives each text delta; the full text is returned at the end.
type TextStreamer interface {
	GenerateStream(ctx context.Context, prompt string, onChunk func(chunk string) error) (string, error)
}

// Estimator turns a complete vehicle description into a valuation text
type Estimator interface {
	Name() string
	Estimate(ctx context.Context, v model.VehicleAttributes) (string, error)
}

// StreamingEstimator is an Estimator that can deliver its text incrementally
type StreamingEstimator interface {
	Estimator
	EstimateStream(ctx context.Context, v model.VehicleAttributes, onChunk func(chunk string) error) (string, error)
}

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content (always present in streaming)
	Content string

	// Thinking/reasoning content (provider-specific, e.g., DeepSeek)
	ThinkingContent string

	Role string
	Done bool
}

// AIAttributesResponse is the JSON shape the model is asked to return when it
// helps with attribute extraction
type AIAttributesResponse struct {
	Make      FlexString `json:"make,omitempty"`
	Model     FlexString `json:"model,omitempty"`
	Year      FlexString `json:"year,omitempty"`
	Mileage   FlexString `json:"mileage,omitempty"`
	Condition FlexString `json:"condition,omitempty"`
}

// FlexString accepts a JSON string, number or null. Models often answer
// {"year": 2019} even when asked for strings.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(v))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", s)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// Ensure the concrete backends satisfy the interfaces
var (
	_ TextGenerator      = (*OpenAIClient)(nil)
	_ TextStreamer       = (*OpenAIClient)(nil)
	_ TextGenerator      = (*GeminiClient)(nil)
	_ TextStreamer       = (*GeminiClient)(nil)
	_ StreamingEstimator = (*PromptEstimator)(nil)
	_ Estimator          = (*HeuristicEstimator)(nil)
)
