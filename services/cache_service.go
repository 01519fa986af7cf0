package services

import (
	"sync"
	"time"

	"github.com/fenilmodi00/cse-site/models"
	"github.com/fenilmodi00/cse-site/shared"
)

// DefaultCacheTimeout is how long a fetched data set is served from memory.
const DefaultCacheTimeout = 30 * time.Second

// CacheEntry represents a cached payload and the moment it was stored
type CacheEntry struct {
	Data      interface{}
	Timestamp time.Time
}

// MarketCache holds at most one entry per endpoint key.
//
// Expiry is lazy: Get ignores an entry once it is cacheTimeout old but leaves
// it in place until the next successful Set overwrites it. Nothing evicts in
// the background.
type MarketCache struct {
	entries      map[models.EndpointKey]CacheEntry
	mutex        sync.RWMutex
	cacheTimeout time.Duration
	clock        shared.Clock
}

// NewMarketCache creates a cache with the given timeout and clock
func NewMarketCache(cacheTimeout time.Duration, clock shared.Clock) *MarketCache {
	if cacheTimeout <= 0 {
		cacheTimeout = DefaultCacheTimeout
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}

	return &MarketCache{
		entries:      make(map[models.EndpointKey]CacheEntry),
		cacheTimeout: cacheTimeout,
		clock:        clock,
	}
}

// Get returns the stored payload if it is younger than the cache timeout
func (mc *MarketCache) Get(key models.EndpointKey) (interface{}, bool) {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	entry, exists := mc.entries[key]
	if !exists {
		return nil, false
	}
	if mc.clock.Now().Sub(entry.Timestamp) >= mc.cacheTimeout {
		return nil, false
	}

	return entry.Data, true
}

// Set replaces the entry for key. A nil payload is never stored.
func (mc *MarketCache) Set(key models.EndpointKey, value interface{}) {
	if value == nil {
		return
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.entries[key] = CacheEntry{
		Data:      value,
		Timestamp: mc.clock.Now(),
	}
}

// Entry returns the raw entry for key, expired or not
func (mc *MarketCache) Entry(key models.EndpointKey) (CacheEntry, bool) {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	entry, exists := mc.entries[key]
	return entry, exists
}

// Size returns the number of stored entries, including expired ones
func (mc *MarketCache) Size() int {
	mc.mutex.RLock()
	defer mc.mutex.RUnlock()

	return len(mc.entries)
}

// Timeout returns the configured cache timeout
func (mc *MarketCache) Timeout() time.Duration {
	return mc.cacheTimeout
}
