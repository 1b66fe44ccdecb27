// Package risk holds the decision logic shared by every front end: the
// patient profile collected by the form, the decision settings, the
// threshold flag and the tier bands.
package risk

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"riskengine/ml"
)

// Values the model expects but the form does not collect.
const (
	FixedGender     = "Male"
	FixedBMIMissing = 0
)

const (
	MinAge = 0
	MaxAge = 100
)

var (
	BinaryOptions   = []int{0, 1}
	MarriedOptions  = []string{"Yes", "No"}
	WorkTypes       = []string{"Private", "Self-employed", "Govt_job", "children", "Never_worked"}
	ResidenceTypes  = []string{"Urban", "Rural"}
	SmokingStatuses = []string{"formerly smoked", "never smoked", "smokes", "Unknown"}
)

// Profile is the patient state collected by the input widgets.
type Profile struct {
	Age             int
	Hypertension    int
	HeartDisease    int
	AvgGlucoseLevel float64
	BMI             float64
	EverMarried     string
	WorkType        string
	ResidenceType   string
	SmokingStatus   string
}

// DefaultProfile is the widget state shown before any interaction.
func DefaultProfile() Profile {
	return Profile{
		Age:             50,
		Hypertension:    0,
		HeartDisease:    0,
		AvgGlucoseLevel: 100.0,
		BMI:             25.0,
		EverMarried:     MarriedOptions[0],
		WorkType:        WorkTypes[0],
		ResidenceType:   ResidenceTypes[0],
		SmokingStatus:   SmokingStatuses[0],
	}
}

// Record assembles the feature record for scoring.
func (p Profile) Record() ml.FeatureRecord {
	return ml.FeatureRecord{
		Age:             p.Age,
		Hypertension:    p.Hypertension,
		HeartDisease:    p.HeartDisease,
		AvgGlucoseLevel: p.AvgGlucoseLevel,
		BMI:             p.BMI,
		BMIMissing:      FixedBMIMissing,
		Gender:          FixedGender,
		EverMarried:     p.EverMarried,
		WorkType:        p.WorkType,
		ResidenceType:   p.ResidenceType,
		SmokingStatus:   p.SmokingStatus,
	}
}

// FieldError names a widget whose value is outside its domain.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError collects every out-of-domain widget of one submission.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Validate checks the widget domains only. It returns nil or a ValidationError.
func (p Profile) Validate() error {
	var errs ValidationError
	if p.Age < MinAge || p.Age > MaxAge {
		errs = append(errs, FieldError{"age", fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)})
	}
	if !slices.Contains(BinaryOptions, p.Hypertension) {
		errs = append(errs, FieldError{"hypertension", "must be 0 or 1"})
	}
	if !slices.Contains(BinaryOptions, p.HeartDisease) {
		errs = append(errs, FieldError{"heart_disease", "must be 0 or 1"})
	}
	if !positiveFinite(p.AvgGlucoseLevel) {
		errs = append(errs, FieldError{"avg_glucose_level", "must be a positive finite number"})
	}
	if !positiveFinite(p.BMI) {
		errs = append(errs, FieldError{"bmi", "must be a positive finite number"})
	}
	errs = checkOption(errs, "ever_married", p.EverMarried, MarriedOptions)
	errs = checkOption(errs, "work_type", p.WorkType, WorkTypes)
	errs = checkOption(errs, "Residence_type", p.ResidenceType, ResidenceTypes)
	errs = checkOption(errs, "smoking_status", p.SmokingStatus, SmokingStatuses)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// positiveFinite is false for NaN and both infinities.
func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func checkOption(errs ValidationError, field, value string, options []string) ValidationError {
	if slices.Contains(options, value) {
		return errs
	}
	return append(errs, FieldError{field, fmt.Sprintf("%q is not one of %s", value, strings.Join(options, ", "))})
}
