package resource

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// SpawnerConfig places nodes in an annulus around Center
type SpawnerConfig struct {
	Center          vmath.Vec3F
	MinRadius       float64
	MaxRadius       float64
	InitialCount    int
	MaxResources    int
	RespawnInterval time.Duration
}

// DefaultSpawnerConfig returns the stock field: 20 nodes, cap 100, one every 5s
func DefaultSpawnerConfig() SpawnerConfig {
	return SpawnerConfig{
		MinRadius:       parameter.SpawnerMinRadius,
		MaxRadius:       parameter.SpawnerMaxRadius,
		InitialCount:    parameter.SpawnerInitialCount,
		MaxResources:    parameter.SpawnerMaxResources,
		RespawnInterval: parameter.SpawnerRespawnInterval,
	}
}

// Spawner populates the registry at start and tops it up on a fixed interval
// The interval may be changed from any goroutine; everything else runs on the tick
type Spawner struct {
	registry *Registry
	rng      *vmath.FastRand
	cfg      SpawnerConfig
	logger   *slog.Logger

	interval atomic.Int64 // time.Duration
	elapsed  time.Duration
}

// NewSpawner creates a spawner over registry; call Populate once before the first tick
func NewSpawner(registry *Registry, cfg SpawnerConfig, rng *vmath.FastRand, logger *slog.Logger) *Spawner {
	if rng == nil {
		rng = vmath.NewFastRand(uint64(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.MaxRadius < cfg.MinRadius {
		cfg.MinRadius, cfg.MaxRadius = cfg.MaxRadius, cfg.MinRadius
	}
	s := &Spawner{
		registry: registry,
		rng:      rng,
		cfg:      cfg,
		logger:   logger.With("component", "spawner"),
	}
	s.SetRespawnInterval(cfg.RespawnInterval)
	return s
}

func (s *Spawner) Name() string {
	return "spawner"
}

func (s *Spawner) Priority() int {
	return parameter.PrioritySpawner
}

// Populate spawns the initial nodes, bounded by the resource cap
func (s *Spawner) Populate() int {
	n := 0
	for i := 0; i < s.cfg.InitialCount; i++ {
		if s.SpawnOne() == nil {
			break
		}
		n++
	}
	s.logger.Debug("populated", "nodes", n)
	return n
}

// SpawnOne places a node at a random annulus point, nil when at the cap
func (s *Spawner) SpawnOne() *Node {
	if s.registry.Len() >= s.cfg.MaxResources {
		return nil
	}
	return s.registry.Spawn(s.samplePosition())
}

// samplePosition returns a point uniform by area in the spawn annulus
func (s *Spawner) samplePosition() vmath.Vec3F {
	return vmath.AnnulusPoint(s.rng, s.cfg.Center, s.cfg.MinRadius, s.cfg.MaxRadius)
}

// Update spawns one node per elapsed interval while under the cap
func (s *Spawner) Update(dt time.Duration) {
	s.elapsed += dt
	for {
		interval := s.RespawnInterval()
		if s.elapsed < interval {
			return
		}
		s.elapsed -= interval
		s.SpawnOne()
	}
}

// RespawnInterval returns the current spawn period
func (s *Spawner) RespawnInterval() time.Duration {
	return time.Duration(s.interval.Load())
}

// SetRespawnInterval stores d clamped to the accepted range and returns the stored value
func (s *Spawner) SetRespawnInterval(d time.Duration) time.Duration {
	switch {
	case d < parameter.MinRespawnInterval:
		s.logger.Debug("respawn interval clamped", "requested", d, "min", parameter.MinRespawnInterval)
		d = parameter.MinRespawnInterval
	case d > parameter.MaxRespawnInterval:
		s.logger.Debug("respawn interval clamped", "requested", d, "max", parameter.MaxRespawnInterval)
		d = parameter.MaxRespawnInterval
	}
	s.interval.Store(int64(d))
	return d
}

// Config returns the placement configuration
func (s *Spawner) Config() SpawnerConfig {
	return s.cfg
}
