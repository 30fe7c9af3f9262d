package parameter

// System Execution Priorities (lower runs first)
const (
	PrioritySpawner   = 10 // Nodes appear before drones look for them
	PriorityFleet     = 20 // One per base, bases tick in registration order
	PriorityTelemetry = 90 // After all state mutation for the tick
)
