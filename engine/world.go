// Package engine runs simulation systems on a fixed tick and routes their events
package engine

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/status"
)

// World owns the system list, the event queue and the tick counter
// Every state mutation happens under updateMutex, either inside Tick or RunSafe
type World struct {
	mu      sync.RWMutex
	systems []System

	updateMutex sync.Mutex

	queue  *event.Queue
	router *event.Router[*World]
	tick   atomic.Int64

	Status *status.Registry
	Logger *slog.Logger

	statTicks   *atomic.Int64
	statEvents  *atomic.Int64
	statDropped *atomic.Int64
}

// NewWorld creates an empty world; a nil logger discards output
func NewWorld(logger *slog.Logger) *World {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	q := event.NewQueue()
	reg := status.NewRegistry()
	return &World{
		queue:       q,
		router:      event.NewRouter[*World](q),
		Status:      reg,
		Logger:      logger,
		statTicks:   reg.Ints.Get("engine.ticks"),
		statEvents:  reg.Ints.Get("engine.events"),
		statDropped: reg.Ints.Get("engine.events_dropped"),
	}
}

// AddSystem registers a system, keeping priority order stable for equal priorities
// Systems that also implement event.Handler[*World] are registered with the router
func (w *World) AddSystem(s System) {
	w.mu.Lock()
	w.systems = append(w.systems, s)
	slices.SortStableFunc(w.systems, func(a, b System) int {
		return a.Priority() - b.Priority()
	})
	w.mu.Unlock()

	if h, ok := s.(event.Handler[*World]); ok {
		w.router.Register(h)
	}
	w.Logger.Debug("system added", "system", s.Name(), "priority", s.Priority())
}

// RegisterHandler adds a standalone event handler
func (w *World) RegisterHandler(h event.Handler[*World]) {
	w.router.Register(h)
}

// Systems returns a copy of the registered systems in run order
func (w *World) Systems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.systems)
}

// Emit queues an event stamped with the current tick; implements event.Emitter
// Safe from any goroutine
func (w *World) Emit(t event.EventType, payload any) {
	w.queue.Push(event.Event{Type: t, Payload: payload, Tick: w.tick.Load()})
}

// Queue exposes the event queue for inspection
func (w *World) Queue() *event.Queue {
	return w.queue
}

// TickCount returns the number of completed ticks
func (w *World) TickCount() int64 {
	return w.tick.Load()
}

// Tick advances every system by dt, then dispatches the events they emitted
func (w *World) Tick(dt time.Duration) {
	w.RunSafe(func() {
		w.TickLocked(dt)
	})
}

// TickLocked is Tick for callers already holding the update lock
func (w *World) TickLocked(dt time.Duration) {
	if dt > parameter.MaxTickDelta {
		dt = parameter.MaxTickDelta
	}

	w.mu.RLock()
	systems := slices.Clone(w.systems)
	w.mu.RUnlock()

	for _, s := range systems {
		s.Update(dt)
	}

	n := w.tick.Add(1)
	w.statTicks.Store(n)

	dispatched := w.router.DispatchAll(w)
	w.statEvents.Add(int64(dispatched))
	w.statDropped.Store(int64(w.queue.Dropped()))
}

// DispatchPending routes queued events without advancing systems
func (w *World) DispatchPending() int {
	var n int
	w.RunSafe(func() {
		n = w.router.DispatchAll(w)
	})
	return n
}

// RunSafe executes fn while holding the world's update lock
func (w *World) RunSafe(fn func()) {
	w.updateMutex.Lock()
	defer w.updateMutex.Unlock()
	fn()
}

// Lock acquires the update mutex
func (w *World) Lock() {
	w.updateMutex.Lock()
}

// TryLock attempts to acquire the update mutex without blocking
func (w *World) TryLock() bool {
	return w.updateMutex.TryLock()
}

func (w *World) Unlock() {
	w.updateMutex.Unlock()
}
