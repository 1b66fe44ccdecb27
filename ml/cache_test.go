package ml

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingScorer struct {
	calls  atomic.Int32
	p      float64
	err    error
	closed bool
}

func (c *countingScorer) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	c.calls.Add(1)
	return c.p, c.err
}

func (c *countingScorer) Info() ModelInfo { return ModelInfo{Type: "fake"} }

func (c *countingScorer) Close() error {
	c.closed = true
	return nil
}

func TestCachedScorerMemoises(t *testing.T) {
	inner := &countingScorer{p: 0.07}
	s, err := NewCachedScorer(inner, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p, err := s.PredictProba(context.Background(), sampleRecord())
		require.NoError(t, err)
		assert.Equal(t, 0.07, p)
	}
	assert.EqualValues(t, 1, inner.calls.Load())

	other := sampleRecord()
	other.BMI = 31.5
	_, err = s.PredictProba(context.Background(), other)
	require.NoError(t, err)
	assert.EqualValues(t, 2, inner.calls.Load())
	assert.Equal(t, 2, s.(*CachedScorer).Len())

	require.NoError(t, s.Close())
	assert.True(t, inner.closed)
}

func TestCachedScorerDoesNotCacheErrors(t *testing.T) {
	inner := &countingScorer{err: errors.New("sidecar down")}
	s, err := NewCachedScorer(inner, 8)
	require.NoError(t, err)

	_, err = s.PredictProba(context.Background(), sampleRecord())
	require.Error(t, err)
	_, err = s.PredictProba(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.EqualValues(t, 2, inner.calls.Load())
}

func TestCachedScorerDisabled(t *testing.T) {
	inner := &countingScorer{}
	s, err := NewCachedScorer(inner, 0)
	require.NoError(t, err)
	assert.Same(t, inner, s)
}

func TestFeatureRecordKeyDistinguishesFields(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	assert.Equal(t, a.Key(), b.Key())

	b.ResidenceType = "Rural"
	assert.NotEqual(t, a.Key(), b.Key())

	c := sampleRecord()
	c.AvgGlucoseLevel = 100.5
	assert.NotEqual(t, a.Key(), c.Key())
}
