package event

// EventType represents the type of simulation event
type EventType int

const (
	// EventNone is the zero value, never emitted
	EventNone EventType = iota

	// === Resource Event ===

	// EventNodeSpawned signals a new resource node in the world
	// Trigger: Spawner | Payload: *NodePayload
	EventNodeSpawned

	// EventNodeClaimed signals a node reserved by a drone
	// Trigger: Registry.Claim | Payload: *NodePayload
	EventNodeClaimed

	// EventNodeHarvested signals a node consumed at the end of the harvest dwell
	// Trigger: Drone | Payload: *NodePayload
	EventNodeHarvested

	// EventNodeReleased signals a reservation returned to the pool
	// Trigger: Drone destroy or abort | Payload: *NodePayload
	EventNodeReleased

	// EventNodeDestroyed signals a node removed by an external actor
	// Trigger: Registry.Destroy | Payload: *NodePayload
	EventNodeDestroyed

	// === Fleet Event ===

	// EventDroneSpawned signals a drone added to a base roster
	// Trigger: Base | Payload: *DronePayload
	EventDroneSpawned

	// EventDroneDestroyed signals a drone removed from a base roster
	// Trigger: Base | Payload: *DronePayload
	EventDroneDestroyed

	// EventPhaseChanged signals a drone state machine transition
	// Trigger: Drone | Payload: *PhasePayload
	EventPhaseChanged

	// EventDropQueued signals a drone took a drop-queue ticket
	// Trigger: Drone | Payload: *DropPayload
	EventDropQueued

	// EventStuckKick signals the stall breaker fired
	// Trigger: Drone | Payload: *StuckKickPayload
	EventStuckKick

	// === Score Event ===

	// EventDelivered signals a unit delivered to a drop point
	// Trigger: Drone | Payload: *DeliveredPayload
	EventDelivered

	// EventCountersChanged signals a faction tally changed
	// Trigger: Drone after delivery | Consumer: Orchestrator | Payload: *CountersChangedPayload
	EventCountersChanged

	// === Control Event ===

	// EventRespawnIntervalChanged signals a new spawner interval
	// Trigger: Orchestrator | Payload: *RespawnIntervalPayload
	EventRespawnIntervalChanged
)
