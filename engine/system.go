package engine

import "time"

// System is one per-tick simulation step
type System interface {
	Name() string
	Priority() int // Lower values run first
	Update(dt time.Duration)
}
