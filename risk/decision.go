package risk

// Tier is the coarse risk band of a probability.
type Tier string

const (
	TierLow      Tier = "Low"
	TierModerate Tier = "Moderate"
	TierHigh     Tier = "High"
)

// Tier band upper bounds. They do not move with the operating threshold.
const (
	LowTierCutoff      = 0.05
	ModerateTierCutoff = 0.15
)

// Flagged reports whether p meets the operating threshold t (inclusive).
func Flagged(p, t float64) bool {
	return p >= t
}

// TierFor maps p onto Low [0,0.05), Moderate [0.05,0.15) and High [0.15,1].
func TierFor(p float64) Tier {
	switch {
	case p < LowTierCutoff:
		return TierLow
	case p < ModerateTierCutoff:
		return TierModerate
	default:
		return TierHigh
	}
}
