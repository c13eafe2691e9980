package cache

import (
	"context"
	"sync"
	"time"
)

// sweepInterval throttles the opportunistic full sweep on Put so a busy
// cache does not rescan the map on every write.
const sweepInterval = time.Minute

// memoryCache is a process-lifetime decision cache. Expired entries are
// evicted on read and swept opportunistically on write, so entries for
// tokens that are never re-presented still leave the map.
type memoryCache struct {
	mu        sync.RWMutex
	entries   map[string]*Entry
	nextSweep time.Time
}

func NewMemoryCache() DecisionCache {
	return &memoryCache{
		entries: make(map[string]*Entry),
	}
}

func (m *memoryCache) Get(_ context.Context, fingerprint string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[fingerprint]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}

	if !time.Now().Before(entry.ExpiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// replaced the entry since the read.
		if cur, ok := m.entries[fingerprint]; ok && !time.Now().Before(cur.ExpiresAt) {
			delete(m.entries, fingerprint)
		}
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}

	return entry, nil
}

func (m *memoryCache) Put(_ context.Context, fingerprint string, entry *Entry, _ time.Duration) error {
	m.mu.Lock()
	m.sweepLocked(time.Now())
	m.entries[fingerprint] = entry
	m.mu.Unlock()
	return nil
}

// sweepLocked drops every expired entry at most once per sweepInterval.
// Callers must hold the write lock.
func (m *memoryCache) sweepLocked(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for fingerprint, entry := range m.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(m.entries, fingerprint)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}
