package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"riskengine/ml"
)

// Assessment is the outcome of one evaluation.
type Assessment struct {
	Profile     Profile
	Settings    Settings
	Record      ml.FeatureRecord
	Probability float64
	Flagged     bool
	Tier        Tier
}

// Observer is notified after every evaluation attempt.
type Observer interface {
	ObserveAssessment(a Assessment, latency time.Duration)
	ObserveFailure(err error)
}

// Assessor runs the full evaluation sequence against a loaded scorer.
type Assessor struct {
	scorer   ml.Scorer
	logger   *zap.Logger
	observer Observer
}

type Option func(*Assessor)

func WithObserver(o Observer) Option {
	return func(a *Assessor) { a.observer = o }
}

func NewAssessor(scorer ml.Scorer, logger *zap.Logger, opts ...Option) *Assessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assessor{scorer: scorer, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ModelInfo describes the scorer behind this assessor.
func (a *Assessor) ModelInfo() ml.ModelInfo {
	return a.scorer.Info()
}

// Assess validates the widget state, scores the assembled record and
// derives the flag and tier. Out-of-domain input is never scored.
func (a *Assessor) Assess(ctx context.Context, profile Profile, settings Settings) (Assessment, error) {
	if err := profile.Validate(); err != nil {
		return a.fail(err)
	}
	if err := settings.Validate(); err != nil {
		return a.fail(err)
	}

	record := profile.Record()
	start := time.Now()
	p, err := a.scorer.PredictProba(ctx, record)
	if err != nil {
		return a.fail(fmt.Errorf("score record: %w", err))
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return a.fail(fmt.Errorf("%w: %v", ml.ErrInvalidProbability, p))
	}
	latency := time.Since(start)

	result := Assessment{
		Profile:     profile,
		Settings:    settings,
		Record:      record,
		Probability: p,
		Flagged:     Flagged(p, settings.Threshold),
		Tier:        TierFor(p),
	}
	a.logger.Debug("assessment",
		zap.Float64("probability", p),
		zap.Float64("threshold", settings.Threshold),
		zap.Bool("flagged", result.Flagged),
		zap.String("tier", string(result.Tier)),
		zap.Duration("latency", latency))
	if a.observer != nil {
		a.observer.ObserveAssessment(result, latency)
	}
	return result, nil
}

func (a *Assessor) fail(err error) (Assessment, error) {
	a.logger.Warn("assessment failed", zap.Error(err))
	if a.observer != nil {
		a.observer.ObserveFailure(err)
	}
	return Assessment{}, err
}
