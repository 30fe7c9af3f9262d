package drone

import (
	"time"

	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/physics"
)

// Config holds per-drone flight and cycle tunables
type Config struct {
	FlyHeight    float64
	TakeoffSpeed float64
	LandingSpeed float64
	CruiseSpeed  float64 // Initial speed, changeable per drone at runtime
	QueueSpacing float64

	Steering physics.SteeringProfile

	HarvestDwell time.Duration
	DeliverDwell time.Duration
	Cooldown     time.Duration

	// Stuck breaker, disabled when StuckTimeout is 0
	StuckEpsilon      float64
	StuckTimeout      time.Duration
	StuckMinKickSpeed float64
	ImpulseDamping    float64
}

func DefaultConfig() Config {
	return Config{
		FlyHeight:         parameter.FlyHeight,
		TakeoffSpeed:      parameter.TakeoffSpeed,
		LandingSpeed:      parameter.LandingSpeed,
		CruiseSpeed:       parameter.CruiseSpeed,
		QueueSpacing:      parameter.QueueSpacing,
		Steering:          physics.DefaultSteeringProfile(),
		HarvestDwell:      parameter.HarvestDwell,
		DeliverDwell:      parameter.DeliverDwell,
		Cooldown:          parameter.CycleCooldown,
		StuckEpsilon:      parameter.StuckEpsilon,
		StuckTimeout:      parameter.StuckTimeout,
		StuckMinKickSpeed: parameter.StuckMinKickSpeed,
		ImpulseDamping:    parameter.ImpulseDamping,
	}
}
