package cache

import (
	"context"
	"time"
)

// noopCache always misses. It backs deployments with caching disabled so
// the decision pipeline never special-cases a nil cache.
type noopCache struct{}

func NewNoopCache() DecisionCache {
	return noopCache{}
}

func (noopCache) Get(_ context.Context, _ string) (*Entry, error) {
	return nil, ErrCacheMiss
}

func (noopCache) Put(_ context.Context, _ string, _ *Entry, _ time.Duration) error {
	return nil
}
