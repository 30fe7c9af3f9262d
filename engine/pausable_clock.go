package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock is simulation time: real time minus the time spent paused
type PausableClock struct {
	mu sync.RWMutex

	source    TimeProvider
	realStart time.Time

	isPaused        atomic.Bool
	pauseStart      time.Time
	totalPausedTime time.Duration
}

// NewPausableClock creates a running clock over source, nil uses the system clock
func NewPausableClock(source TimeProvider) *PausableClock {
	if source == nil {
		source = SystemTimeProvider{}
	}
	return &PausableClock{
		source:    source,
		realStart: source.Now(),
	}
}

// Elapsed returns simulation time since creation, frozen while paused
func (pc *PausableClock) Elapsed() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	if pc.isPaused.Load() {
		return pc.pauseStart.Sub(pc.realStart) - pc.totalPausedTime
	}
	return pc.source.Now().Sub(pc.realStart) - pc.totalPausedTime
}

func (pc *PausableClock) Pause() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if !pc.isPaused.Load() {
		pc.pauseStart = pc.source.Now()
		pc.isPaused.Store(true)
	}
}

func (pc *PausableClock) Resume() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.isPaused.Load() {
		pc.totalPausedTime += pc.source.Now().Sub(pc.pauseStart)
		pc.pauseStart = time.Time{}
		pc.isPaused.Store(false)
	}
}

func (pc *PausableClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// TotalPauseDuration returns cumulative pause time including a current pause
func (pc *PausableClock) TotalPauseDuration() time.Duration {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	total := pc.totalPausedTime
	if pc.isPaused.Load() && !pc.pauseStart.IsZero() {
		total += pc.source.Now().Sub(pc.pauseStart)
	}
	return total
}
