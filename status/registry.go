package status

import "sync/atomic"

// Registry is the central telemetry facade
// Systems cache pointers during init; Update loops write directly to atomics
type Registry struct {
	Bools   *MetricMap[string, atomic.Bool]
	Ints    *MetricMap[string, atomic.Int64]
	Floats  *MetricMap[string, AtomicFloat]
	Strings *MetricMap[string, AtomicString]
}

func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[string, atomic.Bool](),
		Ints:    NewMetricMap[string, atomic.Int64](),
		Floats:  NewMetricMap[string, AtomicFloat](),
		Strings: NewMetricMap[string, AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// IntSnapshot copies every integer gauge into a plain map
func (r *Registry) IntSnapshot() map[string]int64 {
	out := make(map[string]int64, r.Ints.Count())
	r.Ints.Range(func(k string, v *atomic.Int64) {
		out[k] = v.Load()
	})
	return out
}
