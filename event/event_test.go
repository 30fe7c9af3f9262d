package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/drone-harvest/parameter"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Push(Event{Type: EventDelivered, Tick: int64(i)})
	}
	assert.Equal(t, 5, q.Len())

	got := q.Consume()
	require.Len(t, got, 5)
	for i, ev := range got {
		assert.Equal(t, int64(i), ev.Tick)
	}
	assert.Nil(t, q.Consume())
	assert.Zero(t, q.Len())
}

func TestQueueOverflowKeepsNewest(t *testing.T) {
	q := NewQueue()
	total := parameter.EventQueueSize + 10
	for i := 0; i < total; i++ {
		q.Push(Event{Tick: int64(i)})
	}
	got := q.Consume()
	require.Len(t, got, parameter.EventQueueSize)
	assert.Equal(t, int64(10), got[0].Tick)
	assert.Equal(t, int64(total-1), got[len(got)-1].Tick)
	assert.Equal(t, uint64(10), q.Dropped())
}

func TestQueueDroppedCountsOnlyOverwrites(t *testing.T) {
	q := NewQueue()
	for i := 0; i < parameter.EventQueueSize; i++ {
		q.Push(Event{Tick: int64(i)})
	}
	assert.Zero(t, q.Dropped(), "a full ring has not lost anything yet")
	assert.Equal(t, parameter.EventQueueSize, q.Len())

	require.Len(t, q.Consume(), parameter.EventQueueSize)
	for i := 0; i < parameter.EventQueueSize+3; i++ {
		q.Push(Event{Tick: int64(i)})
	}
	assert.Equal(t, uint64(3), q.Dropped())

	got := q.Consume()
	require.Len(t, got, parameter.EventQueueSize)
	assert.Equal(t, int64(3), got[0].Tick)
	assert.Zero(t, q.Len())
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(Event{Type: EventNodeSpawned})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, q.Consume(), 400)
}

type recorder struct {
	types []EventType
	seen  []Event
}

func (r *recorder) EventTypes() []EventType { return r.types }

func (r *recorder) HandleEvent(ctx *int, ev Event) {
	*ctx++
	r.seen = append(r.seen, ev)
}

func TestRouterDispatch(t *testing.T) {
	q := NewQueue()
	router := NewRouter[*int](q)
	a := &recorder{types: []EventType{EventDelivered}}
	b := &recorder{types: []EventType{EventDelivered, EventCountersChanged}}
	router.Register(a)
	router.Register(b)
	assert.Equal(t, 2, router.HandlerCount(EventDelivered))
	assert.Equal(t, 0, router.HandlerCount(EventStuckKick))

	q.Push(Event{Type: EventDelivered, Payload: &DeliveredPayload{Faction: 1, Total: 1}})
	q.Push(Event{Type: EventCountersChanged, Payload: &CountersChangedPayload{Faction: 1}})
	q.Push(Event{Type: EventStuckKick})

	calls := 0
	assert.Equal(t, 3, router.DispatchAll(&calls))
	assert.Equal(t, 3, calls)
	assert.Len(t, a.seen, 1)
	require.Len(t, b.seen, 2)
	assert.Equal(t, EventCountersChanged, b.seen[1].Type)
}

func TestTypeNames(t *testing.T) {
	for _, et := range AllTypes() {
		name := et.String()
		require.NotEqual(t, "unknown", name)
		back, ok := LookupType(name)
		require.True(t, ok)
		assert.Equal(t, et, back)
	}
	assert.Equal(t, "unknown", EventType(999).String())
	_, ok := LookupType("nope")
	assert.False(t, ok)
}
