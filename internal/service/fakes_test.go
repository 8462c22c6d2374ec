package service

import (
	"context"
	"fmt"
	"sync"

	"carvalue/internal/model"
)

// fakeEstimator returns a fixed text or error and records what it was asked
type fakeEstimator struct {
	mu     sync.Mutex
	text   string
	err    error
	chunks []string // when set, EstimateStream delivers these
	calls  []model.VehicleAttributes
}

func (f *fakeEstimator) Name() string { return "fake" }

func (f *fakeEstimator) Estimate(_ context.Context, v model.VehicleAttributes) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, v)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeEstimator) lastCall() model.VehicleAttributes {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return model.VehicleAttributes{}
	}
	return f.calls[len(f.calls)-1]
}

// fakeStreamingEstimator also implements StreamingEstimator
type fakeStreamingEstimator struct {
	fakeEstimator
}

func (f *fakeStreamingEstimator) EstimateStream(ctx context.Context, v model.VehicleAttributes, onChunk func(string) error) (string, error) {
	text, err := f.Estimate(ctx, v)
	if err != nil {
		return "", err
	}
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return "", err
		}
	}
	return text, nil
}

// fakeGenerator is a TextGenerator with canned output
type fakeGenerator struct {
	mu      sync.Mutex
	out     string
	err     error
	prompts []string
}

func (g *fakeGenerator) Name() string { return "fake-gen" }

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.out, g.err
}

// fakeHistory collects logged valuations
type fakeHistory struct {
	logged chan *model.ValuationRecord
	err    error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{logged: make(chan *model.ValuationRecord, 8)}
}

func (h *fakeHistory) LogValuation(_ context.Context, rec *model.ValuationRecord) error {
	h.logged <- rec
	return h.err
}

// sequentialIDs returns "id-1", "id-2", ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}
