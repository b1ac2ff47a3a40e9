package ratelimit

import (
	"sync"
	"time"
)

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter in metrics callbacks.
	Name string

	Burst      float64 // maximum tokens (burst capacity)
	RefillRate float64 // tokens refilled per second

	// CleanupPeriod controls how often inactive buckets are reclaimed.
	CleanupPeriod time.Duration

	// OnDrop is invoked each time a request is rejected.
	OnDrop func(name string)

	// OnUpdate is invoked after cleanup with the active bucket count.
	OnUpdate func(name string, count int)
}

// KeyedLimiter tracks rate limits per key (user ID). Each key gets its
// own token bucket; buckets that refill completely are reclaimed by a
// background cleanup loop.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*Limiter
	config  KeyedConfig
	stopCh  chan struct{}
}

// NewKeyedLimiter creates a per-key rate limiter and starts its cleanup
// goroutine. Call Stop to release it.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}

	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}

	go kl.cleanupLoop()

	return kl
}

// Allow reports whether a request for the given key is allowed,
// consuming a token when it is. An empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	if kl.getOrCreateEntry(key).Allow() {
		return true
	}

	if kl.config.OnDrop != nil {
		kl.config.OnDrop(kl.config.Name)
	}
	return false
}

func (kl *KeyedLimiter) getOrCreateEntry(key string) *Limiter {
	kl.mu.RLock()
	entry, exists := kl.entries[key]
	kl.mu.RUnlock()

	if exists {
		return entry
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if entry, exists = kl.entries[key]; exists {
		return entry
	}

	entry = New(kl.config.Burst, kl.config.RefillRate)
	kl.entries[key] = entry
	return entry
}

// GetActiveCount returns the number of active buckets.
func (kl *KeyedLimiter) GetActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.mu.Lock()
			for key, entry := range kl.entries {
				if entry.IsFull() {
					delete(kl.entries, key)
				}
			}
			activeCount := len(kl.entries)
			kl.mu.Unlock()

			if kl.config.OnUpdate != nil {
				kl.config.OnUpdate(kl.config.Name, activeCount)
			}
		}
	}
}

// Stop gracefully stops the cleanup goroutine.
// Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	select {
	case <-kl.stopCh:
	default:
		close(kl.stopCh)
	}
}
