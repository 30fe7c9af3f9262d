package physics

import (
	"math"

	"github.com/lixenwraith/drone-harvest/vmath"
)

// Lift is an eased vertical move between two altitudes
// Duration is |to-from| / speed, with separate ascend and descend speeds
type Lift struct {
	From, To float64
	Duration float64 // Seconds, 0 = completes on first step
	Elapsed  float64
}

// NewLift plans a vertical move; non-positive speeds complete instantly
func NewLift(from, to, ascendSpeed, descendSpeed float64) Lift {
	speed := descendSpeed
	if to > from {
		speed = ascendSpeed
	}
	l := Lift{From: from, To: to}
	if speed > 0 {
		l.Duration = math.Abs(to-from) / speed
	}
	return l
}

// Step advances the lift and returns the new altitude
// The final step snaps exactly onto To
func (l *Lift) Step(dt float64) (float64, bool) {
	l.Elapsed += dt
	if l.Elapsed >= l.Duration {
		return l.To, true
	}
	p := vmath.EaseInOutQuad(l.Elapsed / l.Duration)
	return l.From + (l.To-l.From)*p, false
}
