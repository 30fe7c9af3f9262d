package parameter

import "time"

// Resource spawner defaults
const (
	SpawnerInitialCount    = 20
	SpawnerMaxResources    = 100
	SpawnerRespawnInterval = 5 * time.Second
	SpawnerMinRadius       = 10.0
	SpawnerMaxRadius       = 25.0

	// Respawn interval bounds accepted from the orchestrator
	MinRespawnInterval = 100 * time.Millisecond
	MaxRespawnInterval = MaxDurationSetting
)

// MaxDurationSetting caps every configured duration
const MaxDurationSetting = 24 * time.Hour

// Base roster defaults
const (
	BaseMinDrones = 1
	BaseMaxDrones = 10
)

// Orchestrator ranges
const (
	DefaultDroneCount = 5
	CruiseSpeedMin    = 0.1
	CruiseSpeedMax    = 20.0
)
