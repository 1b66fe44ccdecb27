package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		p    float64
		want Tier
	}{
		{0, TierLow},
		{0.0499999, TierLow},
		{0.05, TierModerate},
		{0.1, TierModerate},
		{0.1499999, TierModerate},
		{0.15, TierHigh},
		{0.6, TierHigh},
		{1, TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.p), "p=%v", tt.p)
	}
}

func TestFlagged(t *testing.T) {
	tests := []struct {
		name string
		p, t float64
		want bool
	}{
		{"below", 0.49, 0.5, false},
		{"just below", 0.49999, 0.5, false},
		{"equal is flagged", 0.5, 0.5, true},
		{"above", 0.51, 0.5, true},
		{"zero threshold flags everything", 0, 0, true},
		{"threshold one flags only certainty", 0.999, 1, false},
		{"certainty at threshold one", 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Flagged(tt.p, tt.t))
		})
	}
}

func TestTierIndependentOfThreshold(t *testing.T) {
	// A low-tier probability can still be flagged by a low threshold.
	assert.True(t, Flagged(0.03, 0.02))
	assert.Equal(t, TierLow, TierFor(0.03))

	// A high-tier probability can go unflagged under a high threshold.
	assert.False(t, Flagged(0.4, 0.9))
	assert.Equal(t, TierHigh, TierFor(0.4))
}
