package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/vmath"
)

type recordingSystem struct {
	name     string
	priority int
	log      *[]string
	lastDT   time.Duration
	emit     func()
}

func (s *recordingSystem) Name() string  { return s.name }
func (s *recordingSystem) Priority() int { return s.priority }

func (s *recordingSystem) Update(dt time.Duration) {
	s.lastDT = dt
	*s.log = append(*s.log, s.name)
	if s.emit != nil {
		s.emit()
	}
}

type handlerSystem struct {
	recordingSystem
	seen []event.Event
}

func (h *handlerSystem) EventTypes() []event.EventType {
	return []event.EventType{event.EventDelivered}
}

func (h *handlerSystem) HandleEvent(_ *World, ev event.Event) {
	h.seen = append(h.seen, ev)
}

func TestWorldRunsSystemsInPriorityOrder(t *testing.T) {
	w := NewWorld(nil)
	var log []string
	w.AddSystem(&recordingSystem{name: "late", priority: 50, log: &log})
	w.AddSystem(&recordingSystem{name: "early", priority: 1, log: &log})
	w.AddSystem(&recordingSystem{name: "mid-a", priority: 10, log: &log})
	w.AddSystem(&recordingSystem{name: "mid-b", priority: 10, log: &log})

	w.Tick(parameter.TickInterval)
	assert.Equal(t, []string{"early", "mid-a", "mid-b", "late"}, log)
	assert.Equal(t, int64(1), w.TickCount())
	assert.Len(t, w.Systems(), 4)
}

func TestWorldDispatchesAfterSystems(t *testing.T) {
	w := NewWorld(nil)
	var log []string
	h := &handlerSystem{recordingSystem: recordingSystem{name: "h", priority: 5, log: &log}}
	h.emit = func() { w.Emit(event.EventDelivered, &event.DeliveredPayload{Faction: 1}) }
	w.AddSystem(h)

	w.Tick(parameter.TickInterval)
	require.Len(t, h.seen, 1, "handler auto-registered, event dispatched in the same tick")
	assert.Equal(t, int64(0), h.seen[0].Tick, "stamped with the tick that produced it")
	assert.Equal(t, int64(1), w.Status.Ints.Get("engine.events").Load())
	assert.Zero(t, w.Queue().Len())
	assert.Zero(t, w.Status.Ints.Get("engine.events_dropped").Load())
}

func TestWorldReportsOverwrittenEvents(t *testing.T) {
	w := NewWorld(nil)
	for i := 0; i < parameter.EventQueueSize+5; i++ {
		w.Emit(event.EventNodeSpawned, nil)
	}
	w.Tick(parameter.TickInterval)
	assert.Equal(t, int64(5), w.Status.Ints.Get("engine.events_dropped").Load())
	assert.Equal(t, int64(parameter.EventQueueSize), w.Status.Ints.Get("engine.events").Load())
}

func TestWorldCapsTickDelta(t *testing.T) {
	w := NewWorld(nil)
	var log []string
	s := &recordingSystem{name: "s", log: &log}
	w.AddSystem(s)
	w.Tick(5 * time.Second)
	assert.Equal(t, parameter.MaxTickDelta, s.lastDT)
}

func TestWorldDispatchPending(t *testing.T) {
	w := NewWorld(nil)
	var log []string
	h := &handlerSystem{recordingSystem: recordingSystem{name: "h", log: &log}}
	w.RegisterHandler(h)
	w.Emit(event.EventDelivered, nil)
	w.Emit(event.EventStuckKick, nil)
	assert.Equal(t, 2, w.DispatchPending())
	assert.Len(t, h.seen, 1)
}

func TestPausableClock(t *testing.T) {
	mock := NewMockTimeProvider(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewPausableClock(mock)

	mock.Advance(time.Second)
	assert.Equal(t, time.Second, c.Elapsed())

	c.Pause()
	c.Pause()
	mock.Advance(3 * time.Second)
	assert.Equal(t, time.Second, c.Elapsed(), "frozen while paused")
	assert.Equal(t, 3*time.Second, c.TotalPauseDuration())

	c.Resume()
	mock.Advance(time.Second)
	assert.Equal(t, 2*time.Second, c.Elapsed())
	assert.False(t, c.IsPaused())
}

func TestSchedulerStepDeterministic(t *testing.T) {
	mock := NewMockTimeProvider(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	w := NewWorld(nil)
	interval := parameter.TickInterval
	cs, done := NewClockScheduler(w, NewPausableClock(mock), interval)
	cs.nextTickDeadline = interval

	assert.Equal(t, interval, cs.step(), "deadline not reached")
	assert.Zero(t, cs.TickCount())

	mock.Advance(interval)
	assert.Equal(t, interval, cs.step())
	assert.Equal(t, uint64(1), cs.TickCount())
	assert.Equal(t, int64(1), w.TickCount())
	select {
	case <-done:
	default:
		t.Fatal("tick-done signal missing")
	}

	// Far behind: one tick, then resync rather than burst
	mock.Advance(10 * interval)
	assert.Equal(t, interval, cs.step())
	assert.Equal(t, uint64(2), cs.TickCount())

	cs.SetPaused(true)
	assert.True(t, cs.Paused())
	assert.True(t, w.Status.Bools.Get("engine.paused").Load())
	mock.Advance(5 * interval)
	assert.Equal(t, 2*interval, cs.step())
	assert.Equal(t, uint64(2), cs.TickCount())
}

func TestSchedulerStartStop(t *testing.T) {
	w := NewWorld(nil)
	cs, _ := NewClockScheduler(w, nil, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs.Start(ctx)
	require.Eventually(t, func() bool { return cs.TickCount() >= 3 }, 2*time.Second, time.Millisecond)
	cs.Stop()
	cs.Stop()

	n := cs.TickCount()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, cs.TickCount(), "no ticks after stop")
}

type fakeNodes struct{ n, r int }

func (f fakeNodes) Len() int      { return f.n }
func (f fakeNodes) Reserved() int { return f.r }

type fakeFleet struct{ faction, count, queue int }

func (f fakeFleet) Faction() int  { return f.faction }
func (f fakeFleet) Count() int    { return f.count }
func (f fakeFleet) QueueLen() int { return f.queue }

func TestTelemetrySystem(t *testing.T) {
	w := NewWorld(nil)
	w.AddSystem(NewTelemetrySystem(w, fakeNodes{n: 7, r: 3}, fakeFleet{faction: 2, count: 4, queue: 1}))
	w.Emit(event.EventStuckKick, nil)
	w.Emit(event.EventStuckKick, &event.StuckKickPayload{Impulse: vmath.Vec3F{X: 3, Z: 4}})
	w.Emit(event.EventDelivered, nil)
	w.Tick(parameter.TickInterval)

	snap := w.Status.IntSnapshot()
	assert.Equal(t, int64(7), snap["resource.nodes"])
	assert.Equal(t, int64(3), snap["resource.reserved"])
	assert.Equal(t, int64(4), snap["fleet.2.drones"])
	assert.Equal(t, int64(1), snap["fleet.2.queue"])
	assert.Equal(t, int64(2), snap["fleet.stuck_kicks"])
	assert.InDelta(t, 5.0, w.Status.Floats.Get("fleet.kick_peak").Get(), 1e-9)
	assert.Equal(t, int64(1), snap["fleet.delivered"])
	assert.Equal(t, int64(1), snap["engine.ticks"])
}
