package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/status"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// NodeCounter reports resource pool occupancy
type NodeCounter interface {
	Len() int
	Reserved() int
}

// FleetCounter reports one base's roster and queue depth
type FleetCounter interface {
	Faction() int
	Count() int
	QueueLen() int
}

type fleetStats struct {
	src    FleetCounter
	drones *atomic.Int64
	queue  *atomic.Int64
}

// TelemetrySystem mirrors world state into the status registry after every tick
type TelemetrySystem struct {
	nodes  NodeCounter
	fleets []fleetStats

	statNodes    *atomic.Int64
	statReserved *atomic.Int64
	statKicks    *atomic.Int64
	statUnits    *atomic.Int64
	statKickPeak *status.AtomicFloat
}

// NewTelemetrySystem caches metric pointers for nodes and every fleet
func NewTelemetrySystem(w *World, nodes NodeCounter, fleets ...FleetCounter) *TelemetrySystem {
	reg := w.Status
	s := &TelemetrySystem{
		nodes:        nodes,
		statNodes:    reg.Ints.Get("resource.nodes"),
		statReserved: reg.Ints.Get("resource.reserved"),
		statKicks:    reg.Ints.Get("fleet.stuck_kicks"),
		statUnits:    reg.Ints.Get("fleet.delivered"),
		statKickPeak: reg.Floats.Get("fleet.kick_peak"),
	}
	for _, f := range fleets {
		s.fleets = append(s.fleets, fleetStats{
			src:    f,
			drones: reg.Ints.Get(fmt.Sprintf("fleet.%d.drones", f.Faction())),
			queue:  reg.Ints.Get(fmt.Sprintf("fleet.%d.queue", f.Faction())),
		})
	}
	return s
}

func (s *TelemetrySystem) Name() string {
	return "telemetry"
}

func (s *TelemetrySystem) Priority() int {
	return parameter.PriorityTelemetry
}

func (s *TelemetrySystem) Update(time.Duration) {
	if s.nodes != nil {
		s.statNodes.Store(int64(s.nodes.Len()))
		s.statReserved.Store(int64(s.nodes.Reserved()))
	}
	for _, f := range s.fleets {
		f.drones.Store(int64(f.src.Count()))
		f.queue.Store(int64(f.src.QueueLen()))
	}
}

func (s *TelemetrySystem) EventTypes() []event.EventType {
	return []event.EventType{event.EventStuckKick, event.EventDelivered}
}

func (s *TelemetrySystem) HandleEvent(_ *World, ev event.Event) {
	switch ev.Type {
	case event.EventStuckKick:
		s.statKicks.Add(1)
		if p, ok := ev.Payload.(*event.StuckKickPayload); ok {
			s.statKickPeak.Max(vmath.V3FMag(p.Impulse))
		}
	case event.EventDelivered:
		s.statUnits.Add(1)
	}
}
