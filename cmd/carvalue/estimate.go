package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"carvalue/internal/model"
	"carvalue/internal/service"
)

var (
	estimateReq  model.EstimateRequest
	estimateJSON bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Value a car from its details",
	Example: `  carvalue estimate --make Toyota --model Innova --year 2020 --mileage 50000 --condition good
  carvalue estimate --make Honda --model City --year 2018 --mileage 72000 --json`,
	Args: cobra.NoArgs,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estimateReq.Make, "make", "", "Manufacturer, e.g. Toyota")
	f.StringVar(&estimateReq.Model, "model", "", "Model, e.g. Innova")
	f.StringVar(&estimateReq.Year, "year", "", "Model year")
	f.StringVar(&estimateReq.Mileage, "mileage", "", "Kilometres driven")
	f.StringVar(&estimateReq.Condition, "condition", "good", "excellent, good, fair or poor")
	f.StringVar(&estimateReq.AdditionalInfo, "info", "", "Anything else worth knowing about the car")
	f.BoolVar(&estimateJSON, "json", false, "Print the result as JSON")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	vehicle, err := service.ValidateForm(estimateReq, time.Now().Year())
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  --%s: %s\n", fe.Field, fe.Message)
			}
		}
		return errors.New("invalid car details")
	}

	estimator, err := service.NewEstimator(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize valuation backend: %w", err)
	}
	result := service.NewValuationService(estimator, nil, logger).Estimate(cmd.Context(), vehicle, service.SourceForm)

	if estimateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(model.EstimateResponse{Vehicle: vehicle, Valuation: result})
	}

	printAssistant(out, result.Text, darkMode(openPrefs()))
	if !result.OK {
		return errors.New("valuation failed")
	}
	return nil
}
