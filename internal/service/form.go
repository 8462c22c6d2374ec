package service

import (
	"fmt"
	"strconv"
	"strings"

	"carvalue/internal/model"
)

// Form bounds
const (
	MinFormYear    = 1950
	MaxFormMileage = 1_000_000
)

// ValidationErrors is returned when a form submission is rejected
type ValidationErrors []model.FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// ValidateForm checks a form submission and normalizes it into vehicle
// attributes. A blank condition means "good", the form's preselected value.
func ValidateForm(req model.EstimateRequest, currentYear int) (model.VehicleAttributes, error) {
	var errs ValidationErrors

	v := model.VehicleAttributes{
		Make:           strings.TrimSpace(req.Make),
		Model:          strings.TrimSpace(req.Model),
		AdditionalInfo: strings.TrimSpace(req.AdditionalInfo),
	}

	if v.Make == "" {
		errs = append(errs, model.FieldError{Field: model.FieldMake, Message: "Make is required"})
	}
	if v.Model == "" {
		errs = append(errs, model.FieldError{Field: model.FieldModel, Message: "Model is required"})
	}

	year, err := strconv.Atoi(strings.TrimSpace(req.Year))
	if err != nil || year < MinFormYear || year > currentYear {
		errs = append(errs, model.FieldError{
			Field:   model.FieldYear,
			Message: fmt.Sprintf("Year must be between %d and %d", MinFormYear, currentYear),
		})
	} else {
		v.Year = strconv.Itoa(year)
	}

	mileage, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(req.Mileage), ",", ""))
	if err != nil || mileage < 0 || mileage > MaxFormMileage {
		errs = append(errs, model.FieldError{
			Field:   model.FieldMileage,
			Message: "Mileage must be between 0 and 1,000,000",
		})
	} else {
		v.Mileage = strconv.Itoa(mileage)
	}

	condition := model.Condition(strings.ToLower(strings.TrimSpace(req.Condition)))
	if condition == "" {
		condition = model.ConditionGood
	}
	if !condition.Valid() {
		errs = append(errs, model.FieldError{
			Field:   model.FieldCondition,
			Message: "Condition must be one of excellent, good, fair, poor",
		})
	} else {
		v.Condition = condition
	}

	if len(errs) > 0 {
		return model.VehicleAttributes{}, errs
	}
	return v, nil
}
