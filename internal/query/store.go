package query

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry holds one cached query result. A zero TTL means the entry
// stays fresh until explicitly invalidated.
type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Store is the shared session cache behind the query layer. Data is
// considered fresh until a related mutation invalidates it or the
// consumer refetches; reference data may additionally carry a TTL.
type Store struct {
	cacheMutex sync.RWMutex
	entries    map[string]cacheEntry

	singleFlightGroup singleflight.Group
}

// NewStore creates an empty session cache.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key, if fresh.
func (store *Store) Get(key Key) (interface{}, bool) {
	store.cacheMutex.RLock()
	defer store.cacheMutex.RUnlock()

	entry, ok := store.entries[key.String()]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

// Set caches a value that stays fresh until invalidated.
func (store *Store) Set(key Key, data interface{}) {
	store.SetWithTTL(key, data, 0)
}

// SetWithTTL caches a value with an expiry. ttl <= 0 means no expiry.
func (store *Store) SetWithTTL(key Key, data interface{}, ttl time.Duration) {
	entry := cacheEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	store.cacheMutex.Lock()
	store.entries[key.String()] = entry
	store.cacheMutex.Unlock()
}

// InvalidateKey drops a single cached entry.
func (store *Store) InvalidateKey(key Key) {
	store.cacheMutex.Lock()
	delete(store.entries, key.String())
	store.cacheMutex.Unlock()
}

// InvalidateDomain drops every cached entry keyed under the domain.
// Payment-method writes use this to clear the whole paymentSettings
// group in one step.
func (store *Store) InvalidateDomain(domain string) {
	prefix := domain + "/"

	store.cacheMutex.Lock()
	for cached := range store.entries {
		if len(cached) >= len(prefix) && cached[:len(prefix)] == prefix {
			delete(store.entries, cached)
		}
	}
	store.cacheMutex.Unlock()
}

// InvalidateAll empties the cache, e.g. on logout.
func (store *Store) InvalidateAll() {
	store.cacheMutex.Lock()
	store.entries = make(map[string]cacheEntry)
	store.cacheMutex.Unlock()
}
