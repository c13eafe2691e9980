package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Entry is a cached positive authorization decision. ExpiresAt is
// authoritative: implementations may additionally expire entries on their
// own (redis TTL), but readers always re-check ExpiresAt.
type Entry struct {
	PrincipalID string            `json:"principal_id"`
	Context     map[string]string `json:"context"`
	ExpiresAt   time.Time         `json:"expires_at"`
}

// DecisionCache stores confirmed-Allow decisions keyed by token
// fingerprint. Implementations must be safe for concurrent use and cheap on
// the read path; a failing or slow cache degrades to a live oracle call,
// never to a stale Allow.
type DecisionCache interface {
	Get(ctx context.Context, fingerprint string) (*Entry, error)
	Put(ctx context.Context, fingerprint string, entry *Entry, ttl time.Duration) error
}
