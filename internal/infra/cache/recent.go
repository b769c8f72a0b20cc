// Package cache provides small in-process caches for quick reads.
// Caches are never the source of truth.
package cache

import (
	"math/rand"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Recent remembers the last N distinct values, keyed by K.
// Adding an existing key refreshes it instead of duplicating it.
type Recent[K comparable, V any] struct {
	mu    sync.Mutex
	items *lru.Cache[K, V]
	rng   *rand.Rand
}

// NewRecent creates a cache holding at most size values.
func NewRecent[K comparable, V any](size int) (*Recent[K, V], error) {
	items, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &Recent[K, V]{
		items: items,
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}, nil
}

// Add stores v under k, evicting the oldest value when full.
func (r *Recent[K, V]) Add(k K, v V) {
	r.items.Add(k, v)
}

// Random returns one of the cached values, or false when empty.
func (r *Recent[K, V]) Random() (V, bool) {
	values := r.items.Values()
	if len(values) == 0 {
		var zero V
		return zero, false
	}
	r.mu.Lock()
	i := r.rng.Intn(len(values))
	r.mu.Unlock()
	return values[i], true
}

// Values returns the cached values, oldest first.
func (r *Recent[K, V]) Values() []V {
	return r.items.Values()
}

// Len returns the number of cached values.
func (r *Recent[K, V]) Len() int {
	return r.items.Len()
}

// Purge empties the cache.
func (r *Recent[K, V]) Purge() {
	r.items.Purge()
}
