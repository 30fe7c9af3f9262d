// Package drone implements the delivery agent: a per-tick phase machine
// driving lifts, steered cruise legs and the shared reservation and drop protocol
package drone

import (
	"math"
	"slices"
	"time"

	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/drop"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/physics"
	"github.com/lixenwraith/drone-harvest/resource"
	"github.com/lixenwraith/drone-harvest/tally"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// Home is the base a drone belongs to, fixed for the drone's lifetime
type Home interface {
	Faction() int
	DropPoint() vmath.Vec3F
	DropQueue() *drop.Coordinator[*Drone]

	// Neighbors appends the positions of live siblings other than self to buf
	Neighbors(self *Drone, buf []vmath.Vec3F) []vmath.Vec3F
}

// Env is the shared world a drone acts on
// Obstacles and Events may be nil
type Env struct {
	Resources *resource.Registry
	Tally     *tally.Counter
	Obstacles physics.Raycaster
	Events    event.Emitter
	Rand      *vmath.FastRand
}

func (e *Env) emit(t event.EventType, payload any) {
	if e.Events != nil {
		e.Events.Emit(t, payload)
	}
}

// Drone is one delivery agent
// All methods run on the simulation tick; external writers go through World.RunSafe
type Drone struct {
	ID core.Entity

	home Home
	env  *Env
	cfg  *Config

	pose        physics.Pose
	spawn       vmath.Vec3F
	cruiseSpeed float64

	phase  Phase
	target *resource.Node
	ticket int

	// Phase-local state
	lift  physics.Lift
	dest  vmath.Vec3F
	timer time.Duration

	// Stuck breaker
	stall   time.Duration
	impulse vmath.Vec3F

	tracing bool
	path    []vmath.Vec3F

	neighbors  []vmath.Vec3F
	deliveries int64
	destroyed  bool
}

// New places a drone at spawn in the Idle phase
// cfg is shared by every drone of a base and must not change after spawn
func New(id core.Entity, home Home, env *Env, cfg *Config, spawn vmath.Vec3F) *Drone {
	return &Drone{
		ID:          id,
		home:        home,
		env:         env,
		cfg:         cfg,
		pose:        physics.Pose{Position: spawn},
		spawn:       spawn,
		cruiseSpeed: cfg.CruiseSpeed,
		ticket:      drop.NotQueued,
	}
}

func (d *Drone) Home() Home               { return d.home }
func (d *Drone) Phase() Phase             { return d.phase }
func (d *Drone) Position() vmath.Vec3F    { return d.pose.Position }
func (d *Drone) Yaw() vmath.Yaw           { return d.pose.Yaw }
func (d *Drone) SpawnPoint() vmath.Vec3F  { return d.spawn }
func (d *Drone) Target() *resource.Node   { return d.target }
func (d *Drone) Destination() vmath.Vec3F { return d.dest }
func (d *Drone) Deliveries() int64        { return d.deliveries }
func (d *Drone) Destroyed() bool          { return d.destroyed }
func (d *Drone) CruiseSpeed() float64     { return d.cruiseSpeed }
func (d *Drone) PathTracing() bool        { return d.tracing }
func (d *Drone) SetCruiseSpeed(v float64) { d.cruiseSpeed = math.Max(0, v) }

// SetPathTracing toggles path recording; enabling starts a fresh trace
func (d *Drone) SetPathTracing(on bool) {
	if on && !d.tracing {
		d.path = d.path[:0]
	}
	d.tracing = on
}

// Path returns a copy of the positions traced in the current cruise leg
func (d *Drone) Path() []vmath.Vec3F {
	return slices.Clone(d.path)
}

// Destroy removes the drone from the protocol: its reservation returns to the
// pool and its drop ticket leaves the queue wherever it sits
func (d *Drone) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	if d.target != nil {
		d.env.Resources.Release(d.target)
		d.target = nil
	}
	d.home.DropQueue().Remove(d)
	d.ticket = drop.NotQueued
}

// Tick advances the phase machine by dt; no-op once destroyed
func (d *Drone) Tick(dt time.Duration) {
	if d.destroyed {
		return
	}

	if d.phase.TargetBound() && (d.target == nil || !d.target.Alive()) {
		d.abort()
		return
	}

	sec := dt.Seconds()
	cfg := d.cfg

	switch d.phase {
	case PhaseIdle:
		n := d.env.Resources.ReserveNearest(d.pose.Position, d.home.Faction())
		if n == nil {
			return
		}
		d.target = n
		d.beginLift(PhaseAscendToCruise, cfg.FlyHeight)

	case PhaseAscendToCruise:
		if d.stepLift(sec) {
			d.beginCruise(PhaseCruiseToResource, vmath.V3FAtY(d.target.Position, cfg.FlyHeight))
		}

	case PhaseCruiseToResource:
		if d.cruise(dt) {
			d.beginLift(PhaseDescendToResource, d.target.Position.Y)
		}

	case PhaseDescendToResource:
		if d.stepLift(sec) {
			d.beginDwell(PhaseHarvest, cfg.HarvestDwell)
		}

	case PhaseHarvest:
		if d.dwell(dt) {
			d.env.Resources.Harvest(d.target)
			d.target = nil
			d.beginLift(PhaseAscendFromResource, cfg.FlyHeight)
		}

	case PhaseAscendFromResource:
		if d.stepLift(sec) {
			d.ticket = d.home.DropQueue().Enqueue(d)
			d.env.emit(event.EventDropQueued, &event.DropPayload{
				Drone: d.ID, Faction: d.home.Faction(), Ticket: d.ticket,
			})
			d.beginCruise(PhaseCruiseToDropHold, d.holdPosition())
		}

	case PhaseCruiseToDropHold:
		if d.cruise(dt) {
			d.setPhase(PhaseWaitForDropSlot)
		}

	case PhaseWaitForDropSlot:
		q := d.home.DropQueue()
		pos := q.PositionOf(d)
		if pos == drop.NotQueued {
			d.ticket = q.Enqueue(d)
			return
		}
		if pos != 0 {
			return
		}
		dp := d.home.DropPoint()
		if vmath.V3FDistXZ(d.pose.Position, dp) > cfg.Steering.ArrivalRadius {
			d.beginCruise(PhaseAdvanceToDropSlot, vmath.V3FAtY(dp, cfg.FlyHeight))
			return
		}
		d.beginLift(PhaseDescendToDrop, dp.Y)

	case PhaseAdvanceToDropSlot:
		if d.cruise(dt) {
			d.beginLift(PhaseDescendToDrop, d.home.DropPoint().Y)
		}

	case PhaseDescendToDrop:
		if d.stepLift(sec) {
			d.beginDwell(PhaseDeliver, cfg.DeliverDwell)
		}

	case PhaseDeliver:
		if d.dwell(dt) {
			d.deliver()
			d.beginLift(PhaseAscendFromDrop, cfg.FlyHeight)
		}

	case PhaseAscendFromDrop:
		if d.stepLift(sec) {
			d.home.DropQueue().Dequeue(d)
			d.ticket = drop.NotQueued
			d.beginCruise(PhaseReturnHome, vmath.V3FAtY(d.spawn, cfg.FlyHeight))
		}

	case PhaseReturnHome:
		if d.cruise(dt) {
			d.beginLift(PhaseDescendHome, d.spawn.Y)
		}

	case PhaseDescendHome:
		if d.stepLift(sec) {
			d.beginDwell(PhaseCooldown, cfg.Cooldown)
		}

	case PhaseCooldown:
		if d.dwell(dt) {
			d.setPhase(PhaseIdle)
		}
	}
}

// abort drops a dead or missing target and restarts the cycle
func (d *Drone) abort() {
	if d.target != nil {
		d.env.Resources.Release(d.target)
		d.target = nil
	}
	d.setPhase(PhaseIdle)
}

func (d *Drone) deliver() {
	faction := d.home.Faction()
	d.deliveries++
	total := d.env.Tally.Deliver(faction)
	d.env.emit(event.EventDelivered, &event.DeliveredPayload{Drone: d.ID, Faction: faction, Total: total})
	d.env.emit(event.EventCountersChanged, &event.CountersChangedPayload{Faction: faction})
}

// holdPosition is the queue lane slot for the current ticket
func (d *Drone) holdPosition() vmath.Vec3F {
	dp := d.home.DropPoint()
	return vmath.Vec3F{
		X: dp.X + float64(d.ticket)*d.cfg.QueueSpacing,
		Y: d.cfg.FlyHeight,
		Z: dp.Z,
	}
}

func (d *Drone) setPhase(p Phase) {
	from := d.phase
	d.phase = p
	d.env.emit(event.EventPhaseChanged, &event.PhasePayload{
		Drone: d.ID, Faction: d.home.Faction(), From: from.String(), To: p.String(),
	})
}

func (d *Drone) beginLift(p Phase, y float64) {
	d.lift = physics.NewLift(d.pose.Position.Y, y, d.cfg.TakeoffSpeed, d.cfg.LandingSpeed)
	d.setPhase(p)
}

// stepLift moves vertically only; returns true once the target altitude is reached
func (d *Drone) stepLift(sec float64) bool {
	y, done := d.lift.Step(sec)
	d.pose.Position.Y = y
	return done
}

func (d *Drone) beginDwell(p Phase, dur time.Duration) {
	d.timer = dur
	d.setPhase(p)
}

func (d *Drone) dwell(dt time.Duration) bool {
	d.timer -= dt
	return d.timer <= 0
}

func (d *Drone) beginCruise(p Phase, dest vmath.Vec3F) {
	d.dest = dest
	d.stall = 0
	d.path = d.path[:0]
	d.setPhase(p)
}

// cruise runs one steering step toward dest; returns true on arrival
func (d *Drone) cruise(dt time.Duration) bool {
	sec := dt.Seconds()
	prev := d.pose.Position

	d.neighbors = d.home.Neighbors(d, d.neighbors[:0])
	res := physics.Steer(d.pose, physics.SteerInput{
		Dest:      d.dest,
		Speed:     d.cruiseSpeed,
		Neighbors: d.neighbors,
		Obstacles: d.env.Obstacles,
		DT:        sec,
	}, &d.cfg.Steering)
	d.pose = res.Pose

	if !vmath.V3FIsZero(d.impulse) {
		d.pose.Position = vmath.V3FAdd(d.pose.Position, vmath.V3FScale(d.impulse, sec))
		d.impulse = physics.DampImpulse(d.impulse, d.cfg.ImpulseDamping, sec)
		if vmath.V3FMagSq(d.impulse) < 1e-6 {
			d.impulse = vmath.Vec3F{}
		}
	}

	if d.tracing {
		d.path = append(d.path, d.pose.Position)
	}

	d.checkStuck(prev, dt)
	return vmath.V3FDist(d.pose.Position, d.dest) < d.cfg.Steering.ArrivalRadius
}

// checkStuck kicks the drone sideways after a sustained stall
func (d *Drone) checkStuck(prev vmath.Vec3F, dt time.Duration) {
	cfg := d.cfg
	sec := dt.Seconds()
	if cfg.StuckTimeout <= 0 || sec <= 0 {
		return
	}
	if vmath.V3FDist(d.pose.Position, prev)/sec >= cfg.StuckEpsilon {
		d.stall = 0
		return
	}
	d.stall += dt
	if d.stall <= cfg.StuckTimeout {
		return
	}

	var heading vmath.Yaw
	if d.env.Rand != nil {
		heading = vmath.Yaw(d.env.Rand.Angle())
	}
	kick := vmath.V3FScale(heading.Forward(), math.Max(d.cruiseSpeed, cfg.StuckMinKickSpeed))
	d.impulse = vmath.V3FAdd(d.impulse, kick)
	d.stall = 0
	d.env.emit(event.EventStuckKick, &event.StuckKickPayload{
		Drone: d.ID, Position: d.pose.Position, Impulse: kick,
	})
}
