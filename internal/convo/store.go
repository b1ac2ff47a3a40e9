// Package convo stores per-user conversation context: the keywords of
// the last academic answer, used to bias the next match.
package convo

import (
	"sync"
	"time"
)

// Config configures a Store.
type Config struct {
	// TTL is how long an entry survives after its last access.
	TTL time.Duration

	// CleanupPeriod controls how often expired entries are reclaimed.
	CleanupPeriod time.Duration

	// MaxEntries bounds the store. When full, setting a new user's
	// context evicts the least recently accessed entry.
	MaxEntries int

	// OnUpdate is invoked with the entry count after every mutation
	// and cleanup pass.
	OnUpdate func(count int)

	// OnEvict is invoked with the number of entries removed by
	// expiry or capacity eviction.
	OnEvict func(count int)
}

type entry struct {
	keywords   []string
	lastAccess time.Time
}

// Store is a bounded in-memory map of user id to context keywords.
// Entries expire after a period of inactivity; a background janitor
// reclaims them. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  Config
	stopCh  chan struct{}
	stopped sync.Once
}

// NewStore creates a store and starts its janitor goroutine.
// Call Stop to release it.
func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}

	s := &Store{
		entries: make(map[string]*entry),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go s.janitor()

	return s
}

// Get returns the stored keywords for a user, or nil when the user has
// no context. Reading refreshes the entry's expiry.
func (s *Store) Get(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return nil
	}
	e.lastAccess = time.Now()

	out := make([]string, len(e.keywords))
	copy(out, e.keywords)
	return out
}

// Set overwrites the user's context keywords. Empty keyword lists clear
// the entry instead of storing dead weight.
func (s *Store) Set(userID string, keywords []string) {
	if len(keywords) == 0 {
		s.Clear(userID)
		return
	}

	stored := make([]string, len(keywords))
	copy(stored, keywords)

	s.mu.Lock()
	if e, ok := s.entries[userID]; ok {
		e.keywords = stored
		e.lastAccess = time.Now()
		s.mu.Unlock()
		return
	}

	evicted := 0
	if len(s.entries) >= s.config.MaxEntries {
		s.evictOldestLocked()
		evicted = 1
	}
	s.entries[userID] = &entry{keywords: stored, lastAccess: time.Now()}
	count := len(s.entries)
	s.mu.Unlock()

	s.notify(count, evicted)
}

// Clear removes the user's context.
func (s *Store) Clear(userID string) {
	s.mu.Lock()
	_, existed := s.entries[userID]
	delete(s.entries, userID)
	count := len(s.entries)
	s.mu.Unlock()

	if existed {
		s.notify(count, 0)
	}
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stop shuts down the janitor goroutine. Safe to call multiple times.
func (s *Store) Stop() {
	s.stopped.Do(func() { close(s.stopCh) })
}

// evictOldestLocked removes the least recently accessed entry.
// Must be called with mu held.
func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for key, e := range s.entries {
		if first || e.lastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.lastAccess
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}

func (s *Store) janitor() {
	ticker := time.NewTicker(s.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.config.TTL)

			s.mu.Lock()
			expired := 0
			for key, e := range s.entries {
				if e.lastAccess.Before(cutoff) {
					delete(s.entries, key)
					expired++
				}
			}
			count := len(s.entries)
			s.mu.Unlock()

			s.notify(count, expired)
		}
	}
}

func (s *Store) notify(count, evicted int) {
	if s.config.OnUpdate != nil {
		s.config.OnUpdate(count)
	}
	if evicted > 0 && s.config.OnEvict != nil {
		s.config.OnEvict(evicted)
	}
}
