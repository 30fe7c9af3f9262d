package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/drone-harvest/core"
)

// ClockScheduler advances the world on a fixed tick in its own goroutine
// Deadlines are drift-corrected; a scheduler far behind resynchronises instead of bursting
type ClockScheduler struct {
	world *World
	clock *PausableClock

	tickInterval     time.Duration
	nextTickDeadline time.Duration // Clock elapsed time of the next tick
	mu               sync.Mutex

	tickCount atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool

	// Signals the console that a tick completed, never blocks
	updateDone chan struct{}
}

// NewClockScheduler creates a scheduler and returns the tick-done signal channel
func NewClockScheduler(world *World, clock *PausableClock, tickInterval time.Duration) (*ClockScheduler, <-chan struct{}) {
	if clock == nil {
		clock = NewPausableClock(nil)
	}
	updateDone := make(chan struct{}, 1)
	cs := &ClockScheduler{
		world:        world,
		clock:        clock,
		tickInterval: tickInterval,
		stopChan:     make(chan struct{}),
		updateDone:   updateDone,
	}
	return cs, updateDone
}

// Start begins the scheduler loop; it ends on ctx cancellation or Stop
func (cs *ClockScheduler) Start(ctx context.Context) {
	if cs.running.CompareAndSwap(false, true) {
		cs.wg.Add(1)
		cs.world.Logger.Info("scheduler started", "interval", cs.tickInterval)
		core.Go(func() { cs.schedulerLoop(ctx) })
	}
}

// Stop halts the loop and waits for the in-flight tick to finish
func (cs *ClockScheduler) Stop() {
	cs.stopOnce.Do(func() {
		if cs.running.CompareAndSwap(true, false) {
			close(cs.stopChan)
			cs.wg.Wait()
			cs.world.Logger.Info("scheduler stopped", "ticks", cs.tickCount.Load())
		}
	})
}

// SetPaused freezes or resumes simulation time
func (cs *ClockScheduler) SetPaused(paused bool) {
	cs.world.Status.Bools.Get("engine.paused").Store(paused)
	if paused {
		cs.clock.Pause()
		return
	}
	cs.clock.Resume()
}

func (cs *ClockScheduler) Paused() bool {
	return cs.clock.IsPaused()
}

func (cs *ClockScheduler) TickCount() uint64 {
	return cs.tickCount.Load()
}

func (cs *ClockScheduler) schedulerLoop(ctx context.Context) {
	defer cs.wg.Done()

	cs.mu.Lock()
	cs.nextTickDeadline = cs.clock.Elapsed() + cs.tickInterval
	cs.mu.Unlock()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-cs.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		sleepDuration := cs.step()

		if sleepDuration > 0 {
			timer.Reset(sleepDuration)
			select {
			case <-timer.C:
			case <-cs.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// step runs a tick if its deadline passed and returns how long to sleep
func (cs *ClockScheduler) step() time.Duration {
	if cs.clock.IsPaused() {
		// Longer sleep while paused to save CPU
		return cs.tickInterval * 2
	}

	now := cs.clock.Elapsed()
	cs.mu.Lock()
	deadline := cs.nextTickDeadline
	cs.mu.Unlock()

	if now < deadline {
		return deadline - now
	}

	cs.processTick()

	cs.mu.Lock()
	cs.nextTickDeadline += cs.tickInterval
	if now-cs.nextTickDeadline > cs.tickInterval*2 {
		cs.nextTickDeadline = now + cs.tickInterval
	}
	deadline = cs.nextTickDeadline
	cs.mu.Unlock()

	return max(deadline-cs.clock.Elapsed(), 0)
}

// processTick executes one fixed step
func (cs *ClockScheduler) processTick() {
	cs.world.Tick(cs.tickInterval)
	cs.tickCount.Add(1)

	select {
	case cs.updateDone <- struct{}{}:
	default:
	}
}
