package ml

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"riskengine/config"
)

// LoadModel builds the scorer named by cfg.Type. Any failure here is meant
// to stop the process: there is no fallback model.
func LoadModel(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (Scorer, error) {
	var (
		scorer Scorer
		err    error
	)
	switch cfg.Type {
	case TypeRemote:
		scorer, err = NewRemoteScorer(ctx, cfg.Remote.URL, cfg.Remote.Timeout)
	case TypeLogisticRegression, TypeDecisionTree, TypeOnnx:
		scorer, err = loadArtifact(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModelType, cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	info := scorer.Info()
	logger.Info("model loaded",
		zap.String("type", info.Type),
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("source", info.Source),
		zap.Int("cache_size", cfg.CacheSize))

	cached, err := NewCachedScorer(scorer, cfg.CacheSize)
	if err != nil {
		scorer.Close()
		return nil, err
	}
	return cached, nil
}

func loadArtifact(cfg config.ModelConfig) (Scorer, error) {
	a, err := ReadArtifact(cfg.Path)
	if err != nil {
		return nil, err
	}
	if a.ModelType != cfg.Type {
		return nil, fmt.Errorf("%w: artifact is %q, configured type is %q",
			ErrIncompatibleSchema, a.ModelType, cfg.Type)
	}
	switch a.ModelType {
	case TypeLogisticRegression:
		return newLogisticRegression(a, cfg.Path)
	case TypeDecisionTree:
		return newDecisionTree(a, cfg.Path)
	case TypeOnnx:
		return newOnnxScorer(a, cfg.Path, cfg.Onnx.LibraryPath)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedModelType, a.ModelType)
}
