// Package base owns a faction's drone roster, drop point and drop queue
package base

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/drone"
	"github.com/lixenwraith/drone-harvest/drop"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// Config describes one base
type Config struct {
	Faction     int
	Color       core.RGB
	DropPoint   vmath.Vec3F
	SpawnPoints []vmath.Vec3F

	MinDrones     int
	MaxDrones     int
	InitialDrones int // 0 = random in [MinDrones, MaxDrones]

	Drone drone.Config
}

// DefaultConfig returns a base at origin with one spawn point
func DefaultConfig(faction int) Config {
	return Config{
		Faction:     faction,
		Color:       core.RGBWhite,
		SpawnPoints: []vmath.Vec3F{{}},
		MinDrones:   parameter.BaseMinDrones,
		MaxDrones:   parameter.BaseMaxDrones,
		Drone:       drone.DefaultConfig(),
	}
}

// Base keeps its roster at the desired size and ticks every drone it owns
type Base struct {
	cfg    Config
	env    *drone.Env
	ids    *core.EntityAllocator
	logger *slog.Logger

	roster []*drone.Drone
	queue  *drop.Coordinator[*drone.Drone]

	cruiseSpeed float64 // Applied to drones spawned later
	tracing     bool
}

// New validates cfg and returns a base with an empty roster; call Populate to fill it
func New(cfg Config, env *drone.Env, ids *core.EntityAllocator, logger *slog.Logger) (*Base, error) {
	if len(cfg.SpawnPoints) == 0 {
		return nil, errors.New("base: no spawn points")
	}
	if cfg.MinDrones < 0 || cfg.MaxDrones < cfg.MinDrones {
		return nil, fmt.Errorf("base %d: invalid drone bounds [%d,%d]", cfg.Faction, cfg.MinDrones, cfg.MaxDrones)
	}
	if env == nil || env.Resources == nil || env.Tally == nil {
		return nil, fmt.Errorf("base %d: incomplete environment", cfg.Faction)
	}
	if ids == nil {
		ids = core.NewEntityAllocator()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg.SpawnPoints = slices.Clone(cfg.SpawnPoints)
	env.Tally.Track(cfg.Faction)

	return &Base{
		cfg:         cfg,
		env:         env,
		ids:         ids,
		logger:      logger.With("component", "base", "faction", cfg.Faction),
		queue:       drop.NewCoordinator[*drone.Drone](),
		cruiseSpeed: cfg.Drone.CruiseSpeed,
	}, nil
}

// Populate spawns the initial roster and returns its size
func (b *Base) Populate() int {
	n := b.cfg.InitialDrones
	if n <= 0 {
		n = b.cfg.MinDrones
		if b.env.Rand != nil {
			n += b.env.Rand.Intn(b.cfg.MaxDrones - b.cfg.MinDrones + 1)
		}
	}
	return b.SetDesiredCount(n)
}

func (b *Base) Name() string {
	return fmt.Sprintf("fleet-%d", b.cfg.Faction)
}

func (b *Base) Priority() int {
	return parameter.PriorityFleet
}

// Update ticks every drone in roster order
func (b *Base) Update(dt time.Duration) {
	for _, d := range b.roster {
		d.Tick(dt)
	}
}

// SetDesiredCount grows or shrinks the roster to n clamped to the bounds
// Growth spawns round-robin over spawn points, shrinking removes from the end
// Returns the resulting roster size
func (b *Base) SetDesiredCount(n int) int {
	n = min(max(n, b.cfg.MinDrones), b.cfg.MaxDrones)
	for len(b.roster) < n {
		b.SpawnOne()
	}
	for len(b.roster) > n {
		b.despawnLast()
	}
	return len(b.roster)
}

// SpawnOne adds a drone at the next spawn point in rotation, ignoring the max bound
func (b *Base) SpawnOne() *drone.Drone {
	sp := b.cfg.SpawnPoints[len(b.roster)%len(b.cfg.SpawnPoints)]
	d := drone.New(b.ids.Next(), b, b.env, &b.cfg.Drone, sp)
	d.SetCruiseSpeed(b.cruiseSpeed)
	d.SetPathTracing(b.tracing)
	b.roster = append(b.roster, d)

	b.logger.Debug("drone spawned", "drone", d.ID, "roster", len(b.roster))
	b.emit(event.EventDroneSpawned, d)
	return d
}

func (b *Base) despawnLast() {
	last := len(b.roster) - 1
	d := b.roster[last]
	b.roster[last] = nil
	b.roster = b.roster[:last]
	d.Destroy()

	b.logger.Debug("drone destroyed", "drone", d.ID, "phase", d.Phase().String(), "roster", len(b.roster))
	b.emit(event.EventDroneDestroyed, d)
}

func (b *Base) emit(t event.EventType, d *drone.Drone) {
	if b.env.Events == nil {
		return
	}
	b.env.Events.Emit(t, &event.DronePayload{Drone: d.ID, Faction: b.cfg.Faction, Position: d.Position()})
}

// SetCruiseSpeed applies v to every drone and to future spawns
func (b *Base) SetCruiseSpeed(v float64) {
	b.cruiseSpeed = v
	for _, d := range b.roster {
		d.SetCruiseSpeed(v)
	}
}

// SetPathTracing toggles path recording on every drone and future spawns
func (b *Base) SetPathTracing(on bool) {
	b.tracing = on
	for _, d := range b.roster {
		d.SetPathTracing(on)
	}
}

// Neighbors implements drone.Home
func (b *Base) Neighbors(self *drone.Drone, buf []vmath.Vec3F) []vmath.Vec3F {
	for _, d := range b.roster {
		if d != self {
			buf = append(buf, d.Position())
		}
	}
	return buf
}

// Drones returns a snapshot of the roster in spawn order
func (b *Base) Drones() []*drone.Drone {
	return slices.Clone(b.roster)
}

func (b *Base) Faction() int                               { return b.cfg.Faction }
func (b *Base) Color() core.RGB                            { return b.cfg.Color }
func (b *Base) DropPoint() vmath.Vec3F                     { return b.cfg.DropPoint }
func (b *Base) DropQueue() *drop.Coordinator[*drone.Drone] { return b.queue }
func (b *Base) SpawnPoints() []vmath.Vec3F                 { return slices.Clone(b.cfg.SpawnPoints) }
func (b *Base) Count() int                                 { return len(b.roster) }
func (b *Base) MinCount() int                              { return b.cfg.MinDrones }
func (b *Base) MaxCount() int                              { return b.cfg.MaxDrones }
func (b *Base) CruiseSpeed() float64                       { return b.cruiseSpeed }
func (b *Base) PathTracing() bool                          { return b.tracing }

// QueueLen returns the number of drones holding a drop ticket
func (b *Base) QueueLen() int { return b.queue.Len() }
