package ml

import (
	"strconv"
	"strings"
)

// FeatureRecord is the single row handed to a scoring model. The JSON names
// are the training-time column names, including the capitalised
// Residence_type.
type FeatureRecord struct {
	Age             int     `json:"age"`
	Hypertension    int     `json:"hypertension"`
	HeartDisease    int     `json:"heart_disease"`
	AvgGlucoseLevel float64 `json:"avg_glucose_level"`
	BMI             float64 `json:"bmi"`
	BMIMissing      int     `json:"bmi_missing"`
	Gender          string  `json:"gender"`
	EverMarried     string  `json:"ever_married"`
	WorkType        string  `json:"work_type"`
	ResidenceType   string  `json:"Residence_type"`
	SmokingStatus   string  `json:"smoking_status"`
}

const (
	ColAge             = "age"
	ColHypertension    = "hypertension"
	ColHeartDisease    = "heart_disease"
	ColAvgGlucoseLevel = "avg_glucose_level"
	ColBMI             = "bmi"
	ColBMIMissing      = "bmi_missing"
	ColGender          = "gender"
	ColEverMarried     = "ever_married"
	ColWorkType        = "work_type"
	ColResidenceType   = "Residence_type"
	ColSmokingStatus   = "smoking_status"
)

// Columns returns the record columns in model order.
func Columns() []string {
	return []string{
		ColAge,
		ColHypertension,
		ColHeartDisease,
		ColAvgGlucoseLevel,
		ColBMI,
		ColBMIMissing,
		ColGender,
		ColEverMarried,
		ColWorkType,
		ColResidenceType,
		ColSmokingStatus,
	}
}

func isNumericColumn(name string) bool {
	switch name {
	case ColAge, ColHypertension, ColHeartDisease, ColAvgGlucoseLevel, ColBMI, ColBMIMissing:
		return true
	}
	return false
}

func isCategoricalColumn(name string) bool {
	switch name {
	case ColGender, ColEverMarried, ColWorkType, ColResidenceType, ColSmokingStatus:
		return true
	}
	return false
}

// Numeric returns the value of a numeric column.
func (r FeatureRecord) Numeric(name string) (float64, bool) {
	switch name {
	case ColAge:
		return float64(r.Age), true
	case ColHypertension:
		return float64(r.Hypertension), true
	case ColHeartDisease:
		return float64(r.HeartDisease), true
	case ColAvgGlucoseLevel:
		return r.AvgGlucoseLevel, true
	case ColBMI:
		return r.BMI, true
	case ColBMIMissing:
		return float64(r.BMIMissing), true
	}
	return 0, false
}

// Categorical returns the value of a categorical column.
func (r FeatureRecord) Categorical(name string) (string, bool) {
	switch name {
	case ColGender:
		return r.Gender, true
	case ColEverMarried:
		return r.EverMarried, true
	case ColWorkType:
		return r.WorkType, true
	case ColResidenceType:
		return r.ResidenceType, true
	case ColSmokingStatus:
		return r.SmokingStatus, true
	}
	return "", false
}

// Key identifies the record for memoisation.
func (r FeatureRecord) Key() string {
	parts := []string{
		strconv.Itoa(r.Age),
		strconv.Itoa(r.Hypertension),
		strconv.Itoa(r.HeartDisease),
		strconv.FormatFloat(r.AvgGlucoseLevel, 'g', -1, 64),
		strconv.FormatFloat(r.BMI, 'g', -1, 64),
		strconv.Itoa(r.BMIMissing),
		r.Gender,
		r.EverMarried,
		r.WorkType,
		r.ResidenceType,
		r.SmokingStatus,
	}
	return strings.Join(parts, "\x1f")
}
