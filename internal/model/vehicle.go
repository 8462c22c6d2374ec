package model

// Condition is the owner-reported state of the vehicle
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// Conditions lists the accepted condition labels in declaration order
var Conditions = []Condition{ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor}

// Valid reports whether c is one of the four known labels
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Required field names, in the order they are asked for
const (
	FieldMake      = "make"
	FieldModel     = "model"
	FieldYear      = "year"
	FieldMileage   = "mileage"
	FieldCondition = "condition"
)

// RequiredFields is the fixed declaration order make→model→year→mileage→condition
var RequiredFields = []string{FieldMake, FieldModel, FieldYear, FieldMileage, FieldCondition}

// VehicleAttributes is a (possibly partial) description of a car.
// Empty strings mean "not known yet".
type VehicleAttributes struct {
	Make           string    `json:"make,omitempty"`
	Model          string    `json:"model,omitempty"`
	Year           string    `json:"year,omitempty"`
	Mileage        string    `json:"mileage,omitempty"`
	Condition      Condition `json:"condition,omitempty"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
}

// Get returns the value of a required field by name
func (v VehicleAttributes) Get(field string) string {
	switch field {
	case FieldMake:
		return v.Make
	case FieldModel:
		return v.Model
	case FieldYear:
		return v.Year
	case FieldMileage:
		return v.Mileage
	case FieldCondition:
		return string(v.Condition)
	}
	return ""
}

// IsEmpty reports whether no required field has been collected
func (v VehicleAttributes) IsEmpty() bool {
	for _, f := range RequiredFields {
		if v.Get(f) != "" {
			return false
		}
	}
	return true
}
