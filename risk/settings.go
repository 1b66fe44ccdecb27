package risk

import (
	"fmt"
	"math"
	"slices"

	"riskengine/config"
)

// CostRatios is the fixed domain of the false-negative to false-positive
// cost selector. The ratio is displayed but never enters a computation.
var CostRatios = []int{2, 5, 10}

const ThresholdStep = 0.01

// Settings is the state of the decision widgets.
type Settings struct {
	Threshold float64
	CostRatio int
}

func DefaultSettings() Settings {
	return Settings{Threshold: 0.5, CostRatio: CostRatios[0]}
}

// SettingsFromConfig starts the widgets at the configured values, falling
// back to DefaultSettings for anything outside the widget domain.
func SettingsFromConfig(cfg config.DecisionConfig) Settings {
	s := DefaultSettings()
	if cfg.DefaultThreshold >= 0 && cfg.DefaultThreshold <= 1 {
		s.Threshold = cfg.DefaultThreshold
	}
	if slices.Contains(CostRatios, cfg.DefaultCostRatio) {
		s.CostRatio = cfg.DefaultCostRatio
	}
	return s
}

func (s Settings) Validate() error {
	var errs ValidationError
	if math.IsNaN(s.Threshold) || s.Threshold < 0 || s.Threshold > 1 {
		errs = append(errs, FieldError{"threshold", "must be between 0 and 1"})
	}
	if !slices.Contains(CostRatios, s.CostRatio) {
		errs = append(errs, FieldError{"cost_ratio", fmt.Sprintf("must be one of %v", CostRatios)})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
