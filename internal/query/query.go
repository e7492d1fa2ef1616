package query

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotEnabled is returned when a conditional query is read before its
// required parameters are populated. No network call is made.
var ErrNotEnabled = errors.New("query is not enabled yet")

// FetchFunc loads fresh data for a query.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Query is a read operation keyed into the shared Store. Concurrent
// reads for the same key are deduplicated through singleflight, and
// cached data is served until a related mutation invalidates it.
type Query[T any] struct {
	store   *Store
	key     Key
	fetch   FetchFunc[T]
	enabled func() bool
	ttl     time.Duration

	stateMutex sync.Mutex
	loading    bool
	lastErr    error
}

// New creates a query for the given key.
func New[T any](store *Store, key Key, fetch FetchFunc[T]) *Query[T] {
	return &Query[T]{
		store: store,
		key:   key,
		fetch: fetch,
	}
}

// WithEnabled gates the query behind a readiness predicate. The query
// must not fire until the predicate reports true.
func (query *Query[T]) WithEnabled(enabled func() bool) *Query[T] {
	query.enabled = enabled
	return query
}

// WithTTL attaches an expiry to fetched values, used for per-session
// reference data.
func (query *Query[T]) WithTTL(ttl time.Duration) *Query[T] {
	query.ttl = ttl
	return query
}

// Key returns the composite cache key of this query.
func (query *Query[T]) Key() Key {
	return query.key
}

// Get returns cached data when fresh, otherwise fetches. Identical
// concurrent fetches collapse into a single upstream call.
func (query *Query[T]) Get(ctx context.Context) (T, error) {
	var zero T

	if query.enabled != nil && !query.enabled() {
		return zero, ErrNotEnabled
	}

	if cached, ok := query.store.Get(query.key); ok {
		return cached.(T), nil
	}

	query.setLoading(true)
	defer query.setLoading(false)

	result, err, _ := query.store.singleFlightGroup.Do(query.key.String(), func() (interface{}, error) {
		data, fetchError := query.fetch(ctx)
		if fetchError != nil {
			return nil, fetchError
		}
		query.store.SetWithTTL(query.key, data, query.ttl)
		return data, nil
	})

	query.setError(err)
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}

// Refetch drops the cached value and fetches fresh data, e.g. for
// pull-to-refresh.
func (query *Query[T]) Refetch(ctx context.Context) (T, error) {
	query.store.InvalidateKey(query.key)
	return query.Get(ctx)
}

// IsLoading reports whether a fetch is currently in flight.
func (query *Query[T]) IsLoading() bool {
	query.stateMutex.Lock()
	defer query.stateMutex.Unlock()
	return query.loading
}

// IsError reports whether the most recent fetch failed.
func (query *Query[T]) IsError() bool {
	query.stateMutex.Lock()
	defer query.stateMutex.Unlock()
	return query.lastErr != nil
}

// LastError returns the error of the most recent fetch, if any.
func (query *Query[T]) LastError() error {
	query.stateMutex.Lock()
	defer query.stateMutex.Unlock()
	return query.lastErr
}

func (query *Query[T]) setLoading(loading bool) {
	query.stateMutex.Lock()
	query.loading = loading
	query.stateMutex.Unlock()
}

func (query *Query[T]) setError(err error) {
	query.stateMutex.Lock()
	query.lastErr = err
	query.stateMutex.Unlock()
}
