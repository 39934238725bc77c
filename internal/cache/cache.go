// Package cache implements the resolution cache: a memo of successful and
// failed tile resolutions keyed by tile id or intent string.
//
// A key holds either a value or a failure, never both. There is no eviction;
// the cache lives as long as its owner.
package cache

import (
	"sort"
	"sync"

	"launchpad/pkg/domain"
)

// Result is the cached outcome for one key.
type Result[V any] struct {
	Value   V
	Failure *domain.Failure
}

// OK reports whether the result is a success.
func (r Result[V]) OK() bool { return r.Failure == nil }

// Cache memoizes resolution outcomes.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]Result[V]
}

// New constructs an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]Result[V])}
}

// Get returns the cached outcome for key.
func (c *Cache[K, V]) Get(key K) (Result[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// Value returns the cached success for key.
func (c *Cache[K, V]) Value(key K) (V, bool) {
	r, ok := c.Get(key)
	if !ok || !r.OK() {
		var zero V
		return zero, false
	}
	return r.Value, true
}

// Failure returns the cached failure for key.
func (c *Cache[K, V]) Failure(key K) (domain.Failure, bool) {
	r, ok := c.Get(key)
	if !ok || r.OK() {
		return domain.Failure{}, false
	}
	return *r.Failure, true
}

// Remember stores a success, evicting any failure recorded for key.
func (c *Cache[K, V]) Remember(key K, value V) {
	c.mu.Lock()
	c.entries[key] = Result[V]{Value: value}
	c.mu.Unlock()
}

// RememberFailure stores a failure for key. An existing success is kept and
// false is returned.
func (c *Cache[K, V]) RememberFailure(key K, failure domain.Failure) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok && existing.OK() {
		return false
	}
	f := failure
	c.entries[key] = Result[V]{Failure: &f}
	return true
}

// Update applies fn to the cached success for key.
func (c *Cache[K, V]) Update(key K, fn func(*V)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	if !ok || !r.OK() {
		return false
	}
	fn(&r.Value)
	c.entries[key] = r
	return true
}

// Forget drops key.
func (c *Cache[K, V]) Forget(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of successes and failures.
func (c *Cache[K, V]) Len() (successes, failures int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.entries {
		if r.OK() {
			successes++
		} else {
			failures++
		}
	}
	return successes, failures
}

// KeyedFailure pairs a failure with its key.
type KeyedFailure[K comparable] struct {
	Key     K
	Failure domain.Failure
}

// FailuresFor returns the failures recorded for keys, in keys order.
func (c *Cache[K, V]) FailuresFor(keys []K) []KeyedFailure[K] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []KeyedFailure[K]
	for _, k := range keys {
		if r, ok := c.entries[k]; ok && !r.OK() {
			out = append(out, KeyedFailure[K]{Key: k, Failure: *r.Failure})
		}
	}
	return out
}

// GroupBySeverity buckets failures by severity. Severities are returned in
// info, error, fatal order.
func GroupBySeverity[K comparable](failures []KeyedFailure[K]) ([]domain.Severity, map[domain.Severity][]KeyedFailure[K]) {
	buckets := make(map[domain.Severity][]KeyedFailure[K])
	for _, f := range failures {
		buckets[f.Failure.Severity] = append(buckets[f.Failure.Severity], f)
	}
	order := make([]domain.Severity, 0, len(buckets))
	for sev := range buckets {
		order = append(order, sev)
	}
	sort.Slice(order, func(i, j int) bool { return severityRank(order[i]) < severityRank(order[j]) })
	return order, buckets
}

func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityInfo:
		return 0
	case domain.SeverityError:
		return 1
	case domain.SeverityFatal:
		return 2
	default:
		return 3
	}
}
