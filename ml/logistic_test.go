package ml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyLogistic = `{
  "format_version": 1,
  "model_type": "logistic_regression",
  "features": ["age","hypertension","heart_disease","avg_glucose_level","bmi","bmi_missing",
               "gender","ever_married","work_type","Residence_type","smoking_status"],
  "preprocessor": {
    "numeric": [
      {"name":"age","mean":50,"scale":10},
      {"name":"hypertension"},{"name":"heart_disease"},{"name":"avg_glucose_level"},
      {"name":"bmi"},{"name":"bmi_missing"}
    ],
    "categorical": [
      {"name":"gender","categories":["Male"]},
      {"name":"ever_married","categories":["Yes","No"]},
      {"name":"work_type","categories":["Private"]},
      {"name":"Residence_type","categories":["Urban"]},
      {"name":"smoking_status","categories":["never smoked","smokes"]}
    ]
  },
  "estimator": {
    "coefficients": [1,0,0,0,0,0, 0, 0,0, 0, 0, 0,2],
    "intercept": -1
  }
}`

func TestLogisticRegressionPredictProba(t *testing.T) {
	a, err := ParseArtifact([]byte(tinyLogistic))
	require.NoError(t, err)
	model, err := newLogisticRegression(a, "inline")
	require.NoError(t, err)

	tests := []struct {
		name    string
		age     int
		smoking string
		want    float64
	}{
		{"baseline", 50, "never smoked", 0.2689414},
		{"older smoker", 60, "smokes", 0.8807971},
		{"unknown smoking category", 50, "Unknown", 0.2689414},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleRecord()
			r.Age = tt.age
			r.SmokingStatus = tt.smoking
			p, err := model.PredictProba(context.Background(), r)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 1e-6)
		})
	}
}

func TestLogisticRegressionFixture(t *testing.T) {
	a, err := ReadArtifact("testdata/logistic.json")
	require.NoError(t, err)
	model, err := newLogisticRegression(a, "testdata/logistic.json")
	require.NoError(t, err)
	assert.Equal(t, "testdata/logistic.json", model.Info().Source)

	low, err := model.PredictProba(context.Background(), sampleRecord())
	require.NoError(t, err)
	assert.Less(t, low, 0.05)

	r := sampleRecord()
	r.Age = 80
	r.Hypertension = 1
	r.HeartDisease = 1
	r.AvgGlucoseLevel = 220
	high, err := model.PredictProba(context.Background(), r)
	require.NoError(t, err)
	assert.Greater(t, high, 0.5)
	assert.LessOrEqual(t, high, 1.0)
}

func TestLogisticRegressionWidthMismatch(t *testing.T) {
	a, err := ParseArtifact([]byte(tinyLogistic))
	require.NoError(t, err)
	a.Estimator = []byte(`{"coefficients":[1,2,3],"intercept":0}`)

	_, err = newLogisticRegression(a, "inline")
	assert.ErrorIs(t, err, ErrIncompatibleSchema)
}

func TestLogisticRegressionCancelledContext(t *testing.T) {
	a, err := ParseArtifact([]byte(tinyLogistic))
	require.NoError(t, err)
	model, err := newLogisticRegression(a, "inline")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = model.PredictProba(ctx, sampleRecord())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSigmoidStable(t *testing.T) {
	assert.Equal(t, 0.5, sigmoid(0))
	assert.InDelta(t, 1.0, sigmoid(800), 1e-12)
	assert.InDelta(t, 0.0, sigmoid(-800), 1e-12)
}
