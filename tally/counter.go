// Package tally keeps per-faction claim and delivery counts for one run
package tally

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lixenwraith/drone-harvest/status"
)

const instrumentationName = "github.com/lixenwraith/drone-harvest/tally"

// Counter is a monotone faction tally
// Claimed counts nodes reserved by a faction, Delivered counts units dropped off
// Both are safe for concurrent use and never decrease
type Counter struct {
	delivered *status.MetricMap[int, atomic.Int64]
	claimed   *status.MetricMap[int, atomic.Int64]

	deliveries metric.Int64Counter
	claims     metric.Int64Counter
}

// NewCounter creates a tally mirrored to OpenTelemetry counters
// A nil meter uses the global provider, which is a noop unless the host installs one
func NewCounter(meter metric.Meter) (*Counter, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	c := &Counter{
		delivered: status.NewMetricMap[int, atomic.Int64](),
		claimed:   status.NewMetricMap[int, atomic.Int64](),
	}

	var err error
	c.deliveries, err = meter.Int64Counter(
		"drone.deliveries",
		metric.WithDescription("Units delivered to a faction drop point"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create deliveries counter: %w", err)
	}

	c.claims, err = meter.Int64Counter(
		"drone.claims",
		metric.WithDescription("Resource nodes reserved by a faction"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create claims counter: %w", err)
	}
	return c, nil
}

// Claim credits one reserved node to faction and returns the new claim total
func (c *Counter) Claim(faction int) int64 {
	c.claims.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("faction", faction)))
	return c.claimed.Get(faction).Add(1)
}

// Deliver credits one delivered unit to faction and returns the new total
func (c *Counter) Deliver(faction int) int64 {
	c.deliveries.Add(context.Background(), 1, metric.WithAttributes(attribute.Int("faction", faction)))
	return c.delivered.Get(faction).Add(1)
}

// Delivered returns the delivered count, 0 for an unseen faction
func (c *Counter) Delivered(faction int) int64 {
	if v, ok := c.delivered.Lookup(faction); ok {
		return v.Load()
	}
	return 0
}

// Claimed returns the claim count, 0 for an unseen faction
func (c *Counter) Claimed(faction int) int64 {
	if v, ok := c.claimed.Lookup(faction); ok {
		return v.Load()
	}
	return 0
}

// Track registers faction so it appears in snapshots before its first delivery
func (c *Counter) Track(faction int) {
	c.delivered.Get(faction)
	c.claimed.Get(faction)
}

// Snapshot returns delivered counts per faction
func (c *Counter) Snapshot() map[int]int64 {
	out := make(map[int]int64, c.delivered.Count())
	c.delivered.Range(func(f int, v *atomic.Int64) {
		out[f] = v.Load()
	})
	return out
}

// Factions returns tracked faction ids in ascending order
func (c *Counter) Factions() []int {
	return c.delivered.Keys()
}
