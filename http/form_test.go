package http

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskengine/risk"
)

func TestParseFormDefaults(t *testing.T) {
	profile, settings, err := ParseForm(url.Values{}, risk.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, risk.DefaultProfile(), profile)
	assert.Equal(t, risk.DefaultSettings(), settings)
}

func TestParseFormValues(t *testing.T) {
	values := url.Values{
		"age":               {" 33 "},
		"hypertension":      {"1"},
		"heart_disease":     {"0"},
		"avg_glucose_level": {"88.25"},
		"bmi":               {"21.4"},
		"ever_married":      {"No"},
		"work_type":         {"children"},
		"Residence_type":    {"Rural"},
		"smoking_status":    {"Unknown"},
		"threshold":         {"0.07"},
		"cost_ratio":        {"5"},
	}
	profile, settings, err := ParseForm(values, risk.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, risk.Profile{
		Age:             33,
		Hypertension:    1,
		HeartDisease:    0,
		AvgGlucoseLevel: 88.25,
		BMI:             21.4,
		EverMarried:     "No",
		WorkType:        "children",
		ResidenceType:   "Rural",
		SmokingStatus:   "Unknown",
	}, profile)
	assert.Equal(t, risk.Settings{Threshold: 0.07, CostRatio: 5}, settings)
}

func TestParseFormReportsEveryBadField(t *testing.T) {
	_, _, err := ParseForm(url.Values{
		"age":       {"fifty"},
		"bmi":       {"n/a"},
		"threshold": {"half"},
	}, risk.DefaultSettings())

	var verr risk.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, len(verr))
	for i, fe := range verr {
		fields[i] = fe.Field
	}
	assert.Equal(t, []string{"age", "bmi", "threshold"}, fields)
}

func TestParseFormKeepsConfiguredDefaults(t *testing.T) {
	defaults := risk.Settings{Threshold: 0.2, CostRatio: 10}
	_, settings, err := ParseForm(url.Values{"age": {"40"}}, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults, settings)
}
