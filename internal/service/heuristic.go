package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"carvalue/internal/model"
)

// Offline valuation constants
const (
	heuristicBasePrice       = 1_200_000.0 // ₹12 lakh for a standard car
	heuristicDepreciation    = 0.12        // per year of age
	heuristicPerThousandKm   = 200.0
	heuristicFloorPrice      = 50_000.0
	heuristicRangeSpreadLow  = 0.92
	heuristicRangeSpreadHigh = 1.08
)

var conditionFactors = map[model.Condition]float64{
	model.ConditionExcellent: 1.1,
	model.ConditionGood:      1.0,
	model.ConditionFair:      0.85,
}

// HeuristicEstimator prices a car with a flat depreciation formula.
// It needs no network access and is used when no AI backend is configured.
type HeuristicEstimator struct {
	now func() time.Time
}

// NewHeuristicEstimator creates the offline estimator
func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{now: time.Now}
}

// Name implements Estimator
func (h *HeuristicEstimator) Name() string {
	return "heuristic"
}

// Value returns the point estimate in rupees
func (h *HeuristicEstimator) Value(v model.VehicleAttributes) (float64, error) {
	year, err := strconv.Atoi(v.Year)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", v.Year, err)
	}
	mileage, err := strconv.ParseFloat(strings.ReplaceAll(v.Mileage, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mileage %q: %w", v.Mileage, err)
	}

	age := float64(h.now().Year() - year)
	depreciation := heuristicBasePrice * heuristicDepreciation * age
	mileagePenalty := mileage / 1000 * heuristicPerThousandKm

	factor, ok := conditionFactors[v.Condition]
	if !ok {
		factor = 1.0
	}

	value := (heuristicBasePrice - depreciation - mileagePenalty) * factor
	return math.Max(value, heuristicFloorPrice), nil
}

// Estimate implements Estimator
func (h *HeuristicEstimator) Estimate(_ context.Context, v model.VehicleAttributes) (string, error) {
	value, err := h.Value(v)
	if err != nil {
		return "", err
	}

	low := math.Max(value*heuristicRangeSpreadLow, heuristicFloorPrice)
	high := value * heuristicRangeSpreadHigh
	age := h.now().Year() - mustAtoi(v.Year)

	var b strings.Builder
	fmt.Fprintf(&b, "# Valuation: %s %s %s\n\n", v.Year, v.Make, v.Model)
	fmt.Fprintf(&b, "## Estimated Value\n\n- **%s – %s**\n\n", formatRupees(low), formatRupees(high))
	b.WriteString("## Key Factors\n\n")
	fmt.Fprintf(&b, "- **Age:** %d year(s), about %.0f%% depreciation per year\n", age, heuristicDepreciation*100)
	fmt.Fprintf(&b, "- **Mileage:** %s km driven\n", v.Mileage)
	fmt.Fprintf(&b, "- **Condition:** %s\n\n", v.Condition)
	b.WriteString("## Market Trend\n\n")
	b.WriteString("This is an offline estimate from a standard depreciation curve, not live market data.\n\n")
	b.WriteString("## Tips\n\n")
	b.WriteString("- Keep service records ready for buyers\n")
	b.WriteString("- Fix small cosmetic issues before listing\n")
	return b.String(), nil
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// formatRupees groups digits the Indian way: ₹12,34,567
func formatRupees(v float64) string {
	n := int64(math.Round(v))
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return "₹" + s
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return "₹" + strings.Join(groups, ",") + "," + tail
}
