package physics

import (
	"math"

	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// SteeringProfile defines local reactive steering parameters
type SteeringProfile struct {
	MaxTurnRate        float64 // Yaw slerp fraction per second
	SeparationDistance float64 // Neighbor repulsion range
	SeparationWeight   float64 // Repulsion blend weight against goal direction
	RayDistance        float64 // Forward probe length (0 = no probe)
	ArrivalRadius      float64 // Leg ends when closer than this

	// Arrival steering (0 = disabled)
	ArrivalSlowFactor    float64 // Slow radius = factor * speed / MaxTurnRate
	ArrivalMinSpeedRatio float64 // Floor of the slow-down ramp
}

// DefaultSteeringProfile returns the stock drone steering
func DefaultSteeringProfile() SteeringProfile {
	return SteeringProfile{
		MaxTurnRate:          parameter.MaxTurnRate,
		SeparationDistance:   parameter.SeparationDistance,
		SeparationWeight:     parameter.SeparationWeight,
		RayDistance:          parameter.RayDistance,
		ArrivalRadius:        parameter.ArrivalRadius,
		ArrivalSlowFactor:    parameter.ArrivalSlowFactor,
		ArrivalMinSpeedRatio: parameter.ArrivalMinSpeedRatio,
	}
}

// Pose is a position plus yaw-only orientation
type Pose struct {
	Position vmath.Vec3F
	Yaw      vmath.Yaw
}

// Forward returns the unit heading vector
func (p Pose) Forward() vmath.Vec3F {
	return p.Yaw.Forward()
}

// SteerInput is the per-tick context for one agent
type SteerInput struct {
	Dest      vmath.Vec3F
	Speed     float64
	Neighbors []vmath.Vec3F // Sibling positions, self excluded
	Obstacles Raycaster     // nil = open sky
	DT        float64       // Seconds
}

// SteerResult is the agent pose after one step
type SteerResult struct {
	Pose     Pose
	Avoiding bool // Forward probe hit an obstacle this tick
	Arrived  bool
}

// Separation sums unit repulsion vectors from neighbors closer than dist
func Separation(p vmath.Vec3F, neighbors []vmath.Vec3F, dist float64) vmath.Vec3F {
	var sep vmath.Vec3F
	for _, o := range neighbors {
		if vmath.V3FDist(p, o) < dist {
			sep = vmath.V3FAdd(sep, vmath.V3FNormalize(vmath.V3FSub(p, o)))
		}
	}
	return sep
}

// DesiredHeading blends goal seeking and separation, then lets the forward probe override
// Returns the heading to turn toward and whether avoidance took over
func DesiredHeading(pose Pose, in *SteerInput, profile *SteeringProfile) (vmath.Vec3F, bool) {
	p := pose.Position
	dir := vmath.V3FNormalize(vmath.V3FSub(in.Dest, p))

	sep := Separation(p, in.Neighbors, profile.SeparationDistance)
	if !vmath.V3FIsZero(sep) {
		dir = vmath.V3FNormalize(vmath.V3FAdd(dir, vmath.V3FScale(sep, profile.SeparationWeight)))
	}

	if in.Obstacles != nil && profile.RayDistance > 0 {
		fwd := pose.Forward()
		if h, ok := in.Obstacles.Raycast(p, fwd, profile.RayDistance); ok {
			return vmath.V3FReflect(fwd, h.Normal), true
		}
	}
	return dir, false
}

// Steer advances one agent by one tick: turn toward the desired heading at the
// profile's turn rate, then move along the resulting forward vector
func Steer(pose Pose, in SteerInput, profile *SteeringProfile) SteerResult {
	desired, avoiding := DesiredHeading(pose, &in, profile)

	// Yaw-only: a vertical desired heading keeps the current yaw
	if flat := vmath.V3FFlat(desired); !vmath.V3FIsZero(flat) {
		t := math.Min(1, in.DT*profile.MaxTurnRate)
		pose.Yaw = vmath.SlerpYaw(pose.Yaw, vmath.YawOf(flat), t)
	}

	speed := in.Speed
	if profile.ArrivalSlowFactor > 0 && profile.MaxTurnRate > 0 && speed > 0 {
		slowRadius := profile.ArrivalSlowFactor * speed / profile.MaxTurnRate
		if dist := vmath.V3FDist(pose.Position, in.Dest); dist < slowRadius {
			speed *= math.Max(dist/slowRadius, profile.ArrivalMinSpeedRatio)
		}
	}

	pose.Position = vmath.V3FAdd(pose.Position, vmath.V3FScale(pose.Forward(), speed*in.DT))

	return SteerResult{
		Pose:     pose,
		Avoiding: avoiding,
		Arrived:  vmath.V3FDist(pose.Position, in.Dest) < profile.ArrivalRadius,
	}
}

// DampImpulse applies frame-rate independent exponential decay: v * e^(-rate*dt)
func DampImpulse(v vmath.Vec3F, rate, dt float64) vmath.Vec3F {
	if rate <= 0 {
		return v
	}
	return vmath.V3FScale(v, math.Exp(-rate*dt))
}
