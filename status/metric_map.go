package status

import (
	"cmp"
	"maps"
	"slices"
	"sync"
)

// MetricMap is a thread-safe registry of metrics of type T keyed by K
// Registration takes the mutex; cached pointer access is lock-free
type MetricMap[K cmp.Ordered, T any] struct {
	mu    sync.RWMutex
	items map[K]*T
}

func NewMetricMap[K cmp.Ordered, T any]() *MetricMap[K, T] {
	return &MetricMap[K, T]{
		items: make(map[K]*T),
	}
}

// Get returns the metric pointer for key, creating if absent
func (m *MetricMap[K, T]) Get(key K) *T {
	m.mu.RLock()
	if ptr, ok := m.items[key]; ok {
		m.mu.RUnlock()
		return ptr
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr := new(T)
	m.items[key] = ptr
	return ptr
}

// Lookup returns the metric pointer without creating it
func (m *MetricMap[K, T]) Lookup(key K) (*T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ptr, ok := m.items[key]
	return ptr, ok
}

func (m *MetricMap[K, T]) Has(key K) bool {
	_, ok := m.Lookup(key)
	return ok
}

// Range iterates over all metrics in sorted key order
func (m *MetricMap[K, T]) Range(fn func(key K, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, k := range slices.Sorted(maps.Keys(m.items)) {
		fn(k, m.items[k])
	}
}

// Keys returns the registered keys in sorted order
func (m *MetricMap[K, T]) Keys() []K {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items))
}

func (m *MetricMap[K, T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
