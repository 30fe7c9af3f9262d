package parameter

import "time"

// Flight
const (
	FlyHeight    = 10.0 // Cruise altitude for all horizontal transit
	TakeoffSpeed = 5.0  // Units/sec used to time eased ascents
	LandingSpeed = 5.0  // Units/sec used to time eased descents
)

// Movement
const (
	CruiseSpeed        = 5.0  // Default horizontal speed, units/sec
	MaxTurnRate        = 10.0 // Yaw slerp rate, fraction per second
	SeparationDistance = 2.0  // Siblings closer than this repel
	SeparationWeight   = 1.0  // Blend weight of separation against goal direction
	RayDistance        = 5.0  // Forward obstacle probe length

	// ArrivalRadius ends a cruise leg
	ArrivalRadius = 0.5

	// ArrivalSlowFactor scales the slow-down radius (factor * speed / turn rate)
	ArrivalSlowFactor    = 2.0
	// ArrivalMinSpeedRatio floors the arrival slow-down
	ArrivalMinSpeedRatio = 0.2
)

// Stuck breaker
const (
	StuckEpsilon      = 0.05 // Speed in u/s below this counts as stalled
	StuckTimeout      = time.Second
	StuckMinKickSpeed = 1.0 // Kick magnitude floor when cruise speed is ~0
	ImpulseDamping    = 4.0 // Exponential decay rate of a kick, 1/sec
)

// Delivery cycle
const (
	QueueSpacing  = 1.5 // Lateral spacing of holding positions along +X
	HarvestDwell  = 2 * time.Second
	DeliverDwell  = 1 * time.Second
	CycleCooldown = 100 * time.Millisecond // Pause between cycles once home
)
