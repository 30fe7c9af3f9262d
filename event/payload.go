package event

import (
	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// NodePayload identifies a resource node and its owner faction
type NodePayload struct {
	Node     core.Entity `json:"node"`
	Faction  int         `json:"faction"`
	Position vmath.Vec3F `json:"position"`
	Drone    core.Entity `json:"drone,omitempty"` // Zero when no drone is involved
}

// DronePayload identifies a drone and its home faction
type DronePayload struct {
	Drone    core.Entity `json:"drone"`
	Faction  int         `json:"faction"`
	Position vmath.Vec3F `json:"position"`
}

// PhasePayload records one state machine transition
type PhasePayload struct {
	Drone   core.Entity `json:"drone"`
	Faction int         `json:"faction"`
	From    string      `json:"from"`
	To      string      `json:"to"`
}

// DropPayload records a drop-queue ticket
type DropPayload struct {
	Drone   core.Entity `json:"drone"`
	Faction int         `json:"faction"`
	Ticket  int         `json:"ticket"`
}

// StuckKickPayload records the impulse applied to a stalled drone
type StuckKickPayload struct {
	Drone    core.Entity `json:"drone"`
	Position vmath.Vec3F `json:"position"`
	Impulse  vmath.Vec3F `json:"impulse"`
}

// DeliveredPayload records one delivered unit and the faction total after it
type DeliveredPayload struct {
	Drone   core.Entity `json:"drone"`
	Faction int         `json:"faction"`
	Total   int64       `json:"total"`
}

// CountersChangedPayload names the faction whose tally moved
type CountersChangedPayload struct {
	Faction int `json:"faction"`
}

// RespawnIntervalPayload carries the clamped interval in seconds
type RespawnIntervalPayload struct {
	Seconds float64 `json:"seconds"`
}
