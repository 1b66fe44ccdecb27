package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type logisticParams struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// LogisticRegression scores with sigmoid(w·x + b) over the preprocessed vector.
type LogisticRegression struct {
	info         ModelInfo
	preprocessor *Preprocessor
	coef         []float64
	intercept    float64
}

func newLogisticRegression(a *Artifact, source string) (*LogisticRegression, error) {
	pre, err := NewPreprocessor(a.Preprocessor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	var params logisticParams
	if err := json.Unmarshal(a.Estimator, &params); err != nil {
		return nil, fmt.Errorf("%w: estimator: %v", ErrIncompatibleSchema, err)
	}
	if len(params.Coefficients) != pre.Width() {
		return nil, fmt.Errorf("%w: %d coefficients for %d encoded features",
			ErrIncompatibleSchema, len(params.Coefficients), pre.Width())
	}
	return &LogisticRegression{
		info:         artifactInfo(a, source),
		preprocessor: pre,
		coef:         params.Coefficients,
		intercept:    params.Intercept,
	}, nil
}

func (m *LogisticRegression) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := m.preprocessor.Transform(record)
	if err != nil {
		return 0, err
	}
	return sigmoid(floats.Dot(m.coef, x) + m.intercept), nil
}

func (m *LogisticRegression) Info() ModelInfo { return m.info }

func (m *LogisticRegression) Close() error { return nil }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func artifactInfo(a *Artifact, source string) ModelInfo {
	return ModelInfo{
		Type:     a.ModelType,
		Name:     a.Name,
		Version:  a.Version,
		Source:   source,
		Features: append([]string(nil), a.Features...),
	}
}
