package ml

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedScorer memoises probabilities by record. Scorers are
// deterministic, so a hit is always the value inference would return.
type CachedScorer struct {
	inner Scorer
	cache *lru.Cache[string, float64]
}

// NewCachedScorer wraps inner with an LRU of the given size. A size of
// zero or less disables caching and returns inner unchanged.
func NewCachedScorer(inner Scorer, size int) (Scorer, error) {
	if size <= 0 {
		return inner, nil
	}
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, fmt.Errorf("create score cache: %w", err)
	}
	return &CachedScorer{inner: inner, cache: cache}, nil
}

func (c *CachedScorer) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	key := record.Key()
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}
	p, err := c.inner.PredictProba(ctx, record)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, p)
	return p, nil
}

func (c *CachedScorer) Info() ModelInfo { return c.inner.Info() }

// Len reports the number of cached records.
func (c *CachedScorer) Len() int { return c.cache.Len() }

func (c *CachedScorer) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
