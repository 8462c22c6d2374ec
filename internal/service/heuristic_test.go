package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carvalue/internal/model"
)

func newTestHeuristic() *HeuristicEstimator {
	h := NewHeuristicEstimator()
	h.now = func() time.Time { return fixedNow }
	return h
}

func TestHeuristicEstimator_Value(t *testing.T) {
	h := newTestHeuristic()
	base := model.VehicleAttributes{Make: "Toyota", Model: "Innova", Year: "2020", Mileage: "50000"}

	tests := []struct {
		condition model.Condition
		want      float64
	}{
		{model.ConditionExcellent, 517_000},
		{model.ConditionGood, 470_000},
		{model.ConditionFair, 399_500},
		{model.ConditionPoor, 470_000},
	}
	for _, tt := range tests {
		t.Run(string(tt.condition), func(t *testing.T) {
			v := base
			v.Condition = tt.condition
			got, err := h.Value(v)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestHeuristicEstimator_Floor(t *testing.T) {
	h := newTestHeuristic()
	got, err := h.Value(model.VehicleAttributes{Year: "1995", Mileage: "300000", Condition: model.ConditionPoor})
	require.NoError(t, err)
	assert.Equal(t, heuristicFloorPrice, got)
}

func TestHeuristicEstimator_InvalidInput(t *testing.T) {
	h := newTestHeuristic()
	_, err := h.Value(model.VehicleAttributes{Year: "new", Mileage: "1"})
	assert.Error(t, err)
	_, err = h.Value(model.VehicleAttributes{Year: "2020", Mileage: "lots"})
	assert.Error(t, err)
}

func TestHeuristicEstimator_Estimate(t *testing.T) {
	h := newTestHeuristic()
	text, err := h.Estimate(context.Background(), model.VehicleAttributes{
		Make: "Toyota", Model: "Innova", Year: "2020", Mileage: "50000", Condition: model.ConditionGood,
	})
	require.NoError(t, err)
	assert.Contains(t, text, "# Valuation: 2020 Toyota Innova")
	assert.Contains(t, text, "₹4,32,400")
	assert.Contains(t, text, "₹5,07,600")
	assert.Contains(t, text, "## Tips")
}

func TestFormatRupees(t *testing.T) {
	tests := map[float64]string{
		999:        "₹999",
		1000:       "₹1,000",
		100000:     "₹1,00,000",
		1234567:    "₹12,34,567",
		12345678.4: "₹1,23,45,678",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatRupees(in))
	}
}
