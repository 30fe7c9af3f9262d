package tally

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func newCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := NewCounter(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return c
}

func TestCounterMonotone(t *testing.T) {
	c := newCounter(t)
	c.Track(2)

	assert.Equal(t, int64(1), c.Deliver(1))
	assert.Equal(t, int64(2), c.Deliver(1))
	assert.Equal(t, int64(1), c.Claim(1))

	assert.Equal(t, int64(2), c.Delivered(1))
	assert.Equal(t, int64(1), c.Claimed(1))
	assert.Zero(t, c.Delivered(2))
	assert.Zero(t, c.Delivered(7), "unseen faction")

	assert.Equal(t, map[int]int64{1: 2, 2: 0}, c.Snapshot())
	assert.Equal(t, []int{1, 2}, c.Factions())
}

func TestCounterClaimsSeparateFromDeliveries(t *testing.T) {
	c := newCounter(t)
	c.Claim(3)
	c.Claim(3)
	assert.Zero(t, c.Delivered(3))
	assert.Equal(t, int64(2), c.Claimed(3))
}

func TestCounterConcurrent(t *testing.T) {
	c := newCounter(t)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Deliver(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(500), c.Delivered(1))
}

func TestCounterGlobalMeter(t *testing.T) {
	c, err := NewCounter(nil)
	require.NoError(t, err)
	c.Deliver(1)
	assert.Equal(t, int64(1), c.Delivered(1))
}
