// Package orchestrator assembles a scene from config and exposes the operator surface:
// drone count, cruise speed, respawn interval, path tracing and delivered counts
package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/lixenwraith/drone-harvest/base"
	"github.com/lixenwraith/drone-harvest/config"
	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/drone"
	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/resource"
	"github.com/lixenwraith/drone-harvest/status"
	"github.com/lixenwraith/drone-harvest/tally"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// ErrUnknownFaction is returned by Base for factions not in the scene
var ErrUnknownFaction = errors.New("unknown faction")

// Options tune controller construction; the zero value is usable
type Options struct {
	Logger *slog.Logger
	Meter  metric.Meter // nil uses the global provider
}

// Ranges reports the bounds the operator UI starts from
type Ranges struct {
	MinDrones       int
	MaxDrones       int
	Drones          int
	MinCruiseSpeed  float64
	MaxCruiseSpeed  float64
	CruiseSpeed     float64
	RespawnInterval time.Duration
}

// Controller owns one running scene
// Every mutating call takes the world update lock; readers of cached counts do not
type Controller struct {
	cfg     *config.Config
	session uuid.UUID
	logger  *slog.Logger

	world    *engine.World
	ids      *core.EntityAllocator
	rng      *vmath.FastRand
	tally    *tally.Counter
	registry *resource.Registry
	spawner  *resource.Spawner
	bases    []*base.Base

	tracing atomic.Bool

	statSession  *status.AtomicString
	statInterval *status.AtomicFloat
	statSpeed    *status.AtomicFloat
	statTracing  *atomic.Bool

	countsMu sync.RWMutex
	counts   map[int]int64
}

// New builds the world, resource pool, spawner and every base described by cfg
// Nodes and rosters are populated before New returns
func New(cfg *config.Config, opts Options) (*Controller, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	session := uuid.New()
	logger = logger.With("session", session.String())

	counter, err := tally.NewCounter(opts.Meter)
	if err != nil {
		return nil, fmt.Errorf("tally: %w", err)
	}

	c := &Controller{
		cfg:     cfg,
		session: session,
		logger:  logger.With("component", "orchestrator"),
		world:   engine.NewWorld(logger),
		ids:     core.NewEntityAllocator(),
		rng:     vmath.NewFastRand(cfg.Seed),
		tally:   counter,
		counts:  make(map[int]int64),
	}
	st := c.world.Status
	c.statSession = st.Strings.Get("scene.session")
	c.statInterval = st.Floats.Get("spawner.interval")
	c.statSpeed = st.Floats.Get("fleet.cruise_speed")
	c.statTracing = st.Bools.Get("fleet.tracing")
	c.statSession.Store(session.String())

	c.registry = resource.NewRegistry(c.ids, counter, c.world)
	c.spawner = resource.NewSpawner(c.registry, cfg.SpawnerConfig(), c.rng, logger)
	c.statInterval.Set(c.spawner.RespawnInterval().Seconds())
	c.statSpeed.Set(cfg.Drone.CruiseSpeed)

	env := &drone.Env{
		Resources: c.registry,
		Tally:     counter,
		Events:    c.world,
		Rand:      c.rng,
	}
	if obs := cfg.ObstacleSet(); obs != nil {
		env.Obstacles = obs
	}

	baseCfgs, err := cfg.BaseConfigs()
	if err != nil {
		return nil, err
	}
	fleets := make([]engine.FleetCounter, 0, len(baseCfgs))
	for _, bc := range baseCfgs {
		b, err := base.New(bc, env, c.ids, logger)
		if err != nil {
			return nil, fmt.Errorf("build base: %w", err)
		}
		c.bases = append(c.bases, b)
		fleets = append(fleets, b)
	}

	c.world.AddSystem(c.spawner)
	for _, b := range c.bases {
		c.world.AddSystem(b)
	}
	c.world.AddSystem(engine.NewTelemetrySystem(c.world, c.registry, fleets...))
	c.world.RegisterHandler(c)

	c.world.RunSafe(func() {
		nodes := c.spawner.Populate()
		for _, b := range c.bases {
			n := b.Populate()
			c.logger.Info("base ready", "faction", b.Faction(), "drones", n)
		}
		c.logger.Info("scene ready", "nodes", nodes, "bases", len(c.bases), "seed", cfg.Seed)
	})
	c.Refresh()
	return c, nil
}

func (c *Controller) World() *engine.World            { return c.world }
func (c *Controller) Bases() []*base.Base             { return c.bases }
func (c *Controller) Registry() *resource.Registry    { return c.registry }
func (c *Controller) Spawner() *resource.Spawner      { return c.spawner }
func (c *Controller) Tally() *tally.Counter           { return c.tally }
func (c *Controller) Config() *config.Config          { return c.cfg }
func (c *Controller) Session() uuid.UUID              { return c.session }
func (c *Controller) PathTracing() bool               { return c.tracing.Load() }
func (c *Controller) Step(dt time.Duration)           { c.world.Tick(dt) }
func (c *Controller) Logger() *slog.Logger            { return c.logger }
func (c *Controller) Entities() *core.EntityAllocator { return c.ids }

// SetDroneCount resizes every base roster to n within its bounds and returns the first base's size
func (c *Controller) SetDroneCount(n int) int {
	var got int
	c.world.RunSafe(func() {
		for i, b := range c.bases {
			size := b.SetDesiredCount(n)
			if i == 0 {
				got = size
			}
		}
	})
	c.logger.Debug("drone count set", "requested", n, "applied", got)
	return got
}

// SetCruiseSpeed clamps v to the operator range, broadcasts it and returns the applied value
func (c *Controller) SetCruiseSpeed(v float64) float64 {
	if math.IsNaN(v) {
		v = parameter.CruiseSpeed
	}
	v = min(max(v, parameter.CruiseSpeedMin), parameter.CruiseSpeedMax)
	c.world.RunSafe(func() {
		for _, b := range c.bases {
			b.SetCruiseSpeed(v)
		}
	})
	c.statSpeed.Set(v)
	return v
}

// Ranges returns the drone count bounds valid for every base and the current values
func (c *Controller) Ranges() Ranges {
	r := Ranges{
		MinCruiseSpeed:  parameter.CruiseSpeedMin,
		MaxCruiseSpeed:  parameter.CruiseSpeedMax,
		CruiseSpeed:     c.cfg.Drone.CruiseSpeed,
		RespawnInterval: c.spawner.RespawnInterval(),
	}
	c.world.RunSafe(func() {
		found := false
		for i, b := range c.bases {
			if i == 0 {
				r.MinDrones, r.MaxDrones, r.Drones = b.MinCount(), b.MaxCount(), b.Count()
				r.CruiseSpeed = b.CruiseSpeed()
			} else {
				r.MinDrones = max(r.MinDrones, b.MinCount())
				r.MaxDrones = max(min(r.MaxDrones, b.MaxCount()), r.MinDrones)
			}
			if !found {
				if ds := b.Drones(); len(ds) > 0 {
					r.CruiseSpeed = ds[0].CruiseSpeed()
					found = true
				}
			}
		}
	})
	return r
}

// SubmitRespawnInterval parses text as seconds and applies it, clamped to the spawner range
// The returned string is what the input field should show: the applied value on success,
// the previous value on malformed input
func (c *Controller) SubmitRespawnInterval(text string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		shown := formatSeconds(c.spawner.RespawnInterval())
		c.logger.Debug("respawn interval rejected", "input", text, "shown", shown)
		return shown, false
	}

	f = min(f, parameter.MaxRespawnInterval.Seconds())

	var applied time.Duration
	c.world.RunSafe(func() {
		applied = c.spawner.SetRespawnInterval(time.Duration(f * float64(time.Second)))
	})
	c.statInterval.Set(applied.Seconds())
	c.world.Emit(event.EventRespawnIntervalChanged, &event.RespawnIntervalPayload{Seconds: applied.Seconds()})
	return formatSeconds(applied), true
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64)
}

// SetPathTracing toggles path recording on every drone; turning it on clears old paths
func (c *Controller) SetPathTracing(on bool) {
	c.tracing.Store(on)
	c.statTracing.Store(on)
	c.world.RunSafe(func() {
		for _, b := range c.bases {
			b.SetPathTracing(on)
		}
	})
}

// Counts returns the cached delivered totals per faction
func (c *Controller) Counts() map[int]int64 {
	c.countsMu.RLock()
	defer c.countsMu.RUnlock()
	out := make(map[int]int64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Refresh reloads the cached counts from the tally
func (c *Controller) Refresh() {
	snap := c.tally.Snapshot()
	c.countsMu.Lock()
	c.counts = snap
	c.countsMu.Unlock()
}

// Base returns the base for faction
func (c *Controller) Base(faction int) (*base.Base, error) {
	for _, b := range c.bases {
		if b.Faction() == faction {
			return b, nil
		}
	}
	return nil, fmt.Errorf("faction %d: %w", faction, ErrUnknownFaction)
}

func (c *Controller) EventTypes() []event.EventType {
	return []event.EventType{event.EventCountersChanged}
}

func (c *Controller) HandleEvent(_ *engine.World, ev event.Event) {
	if ev.Type == event.EventCountersChanged {
		c.Refresh()
	}
}
