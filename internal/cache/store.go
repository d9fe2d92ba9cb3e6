// Package cache provides a TTL key-value store for venue enrichment.
package cache

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/omoide/internal/models"
	"go.uber.org/zap"
)

var keyStripPattern = regexp.MustCompile(`[^a-z0-9_-]`)

// NormalizeKey converts a venue query into its cache key: lowercase,
// trimmed, whitespace collapsed to underscores, all other characters
// outside [a-z0-9_-] removed. "Senso-ji Temple " and "senso-ji temple"
// collide by design.
func NormalizeKey(query string) string {
	key := strings.ToLower(strings.TrimSpace(query))
	key = strings.Join(strings.Fields(key), "_")
	return keyStripPattern.ReplaceAllString(key, "")
}

// Store is the venue cache contract. Implementations must be safe for
// concurrent use from many in-flight requests.
type Store interface {
	Get(key string) (*models.VenueEnrichment, bool)
	Put(key string, value *models.VenueEnrichment, ttl time.Duration)
	Delete(key string)
	Sweep() int
}

type entry struct {
	value     *models.VenueEnrichment
	expiresAt time.Time
}

// MemoryStore is an in-memory TTL store. Expired entries are invisible on
// read and removed by Sweep or the background sweep loop.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	logger  *zap.Logger
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithLogger sets a logger for sweep reporting.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *MemoryStore) { s.logger = l }
}

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key if present and not expired.
func (s *MemoryStore) Get(key string) (*models.VenueEnrichment, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		// Lazy expiry: drop the stale entry so memory is reclaimed even
		// between sweeps. Writes are idempotent re-derivations, so a
		// concurrent Put racing this delete is harmless.
		s.mu.Lock()
		if cur, still := s.entries[key]; still && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Put stores value under key with the given TTL. Last write wins.
func (s *MemoryStore) Put(key string, value *models.VenueEnrichment, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// Delete removes key if present.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Sweep removes all expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	s.mu.Unlock()
	if removed > 0 && s.logger != nil {
		s.logger.Debug("cache sweep", zap.Int("removed", removed))
	}
	return removed
}

// Len returns the number of entries, including any not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartSweeper runs Sweep every interval until stop is closed.
func (s *MemoryStore) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-stop:
				return
			}
		}
	}()
}
