package parameter

import "time"

// Simulation Loop Timing
const (
	// TickInterval is the fixed simulation step (~60 Hz, one step per frame)
	TickInterval = time.Second / 60

	// MaxTickDelta caps a single step so a stalled scheduler does not teleport drones
	MaxTickDelta = 100 * time.Millisecond

	// FrameUpdateInterval is the console redraw interval
	FrameUpdateInterval = 33 * time.Millisecond
)

// Event Queue Limits
const (
	// EventQueueSize is the fixed capacity of the event ring buffer
	EventQueueSize = 2048

	// EventBufferMask is the bitmask for fast modulo operations (2048 - 1)
	EventBufferMask = 2047
)
