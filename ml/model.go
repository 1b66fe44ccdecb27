package ml

import (
	"context"
	"errors"
)

const (
	TypeLogisticRegression = "logistic_regression"
	TypeDecisionTree       = "decision_tree"
	TypeOnnx               = "onnx"
	TypeRemote             = "remote"
)

var (
	ErrUnsupportedModelType = errors.New("unsupported model type")
	ErrIncompatibleSchema   = errors.New("model artifact is incompatible with the feature record")
	ErrInvalidProbability   = errors.New("model returned a probability outside [0,1]")
	ErrRemoteURLRequired    = errors.New("model.remote.url is required for the remote model type")
)

// Scorer turns a feature record into the positive-class probability.
// Implementations are immutable once loaded and safe for concurrent use.
type Scorer interface {
	PredictProba(ctx context.Context, record FeatureRecord) (float64, error)
	Info() ModelInfo
	Close() error
}

// ModelInfo describes the loaded artifact.
type ModelInfo struct {
	Type     string   `json:"type"`
	Name     string   `json:"name,omitempty"`
	Version  string   `json:"version,omitempty"`
	Source   string   `json:"source"`
	Features []string `json:"features"`
}
