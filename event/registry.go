package event

// Stable names for journals and logs
var typeToName = map[EventType]string{
	EventNone:                   "none",
	EventNodeSpawned:            "node_spawned",
	EventNodeClaimed:            "node_claimed",
	EventNodeHarvested:          "node_harvested",
	EventNodeReleased:           "node_released",
	EventNodeDestroyed:          "node_destroyed",
	EventDroneSpawned:           "drone_spawned",
	EventDroneDestroyed:         "drone_destroyed",
	EventPhaseChanged:           "phase_changed",
	EventDropQueued:             "drop_queued",
	EventStuckKick:              "stuck_kick",
	EventDelivered:              "delivered",
	EventCountersChanged:        "counters_changed",
	EventRespawnIntervalChanged: "respawn_interval_changed",
}

var nameToType = func() map[string]EventType {
	m := make(map[string]EventType, len(typeToName))
	for t, n := range typeToName {
		m[n] = t
	}
	return m
}()

// String returns the stable event name, "unknown" for unregistered values
func (t EventType) String() string {
	if n, ok := typeToName[t]; ok {
		return n
	}
	return "unknown"
}

// LookupType returns the EventType for a stable name
func LookupType(name string) (EventType, bool) {
	t, ok := nameToType[name]
	return t, ok
}

// AllTypes returns every emittable type in declaration order
func AllTypes() []EventType {
	out := make([]EventType, 0, len(typeToName)-1)
	for t := EventNone + 1; t <= EventRespawnIntervalChanged; t++ {
		out = append(out, t)
	}
	return out
}
