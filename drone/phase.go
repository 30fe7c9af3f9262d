package drone

// Phase is the current step of a drone's delivery cycle
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAscendToCruise
	PhaseCruiseToResource
	PhaseDescendToResource
	PhaseHarvest
	PhaseAscendFromResource
	PhaseCruiseToDropHold
	PhaseWaitForDropSlot
	PhaseAdvanceToDropSlot
	PhaseDescendToDrop
	PhaseDeliver
	PhaseAscendFromDrop
	PhaseReturnHome
	PhaseDescendHome
	PhaseCooldown
)

var phaseNames = [...]string{
	PhaseIdle:               "Idle",
	PhaseAscendToCruise:     "AscendToCruise",
	PhaseCruiseToResource:   "CruiseToResource",
	PhaseDescendToResource:  "DescendToResource",
	PhaseHarvest:            "Harvest",
	PhaseAscendFromResource: "AscendFromResource",
	PhaseCruiseToDropHold:   "CruiseToDropHold",
	PhaseWaitForDropSlot:    "WaitForDropSlot",
	PhaseAdvanceToDropSlot:  "AdvanceToDropSlot",
	PhaseDescendToDrop:      "DescendToDrop",
	PhaseDeliver:            "Deliver",
	PhaseAscendFromDrop:     "AscendFromDrop",
	PhaseReturnHome:         "ReturnHome",
	PhaseDescendHome:        "DescendHome",
	PhaseCooldown:           "Cooldown",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

// Cruising reports whether the phase is horizontal steered flight
func (p Phase) Cruising() bool {
	switch p {
	case PhaseCruiseToResource, PhaseCruiseToDropHold, PhaseAdvanceToDropSlot, PhaseReturnHome:
		return true
	}
	return false
}

// Lifting reports whether the phase is an eased vertical move
func (p Phase) Lifting() bool {
	switch p {
	case PhaseAscendToCruise, PhaseDescendToResource, PhaseAscendFromResource,
		PhaseDescendToDrop, PhaseAscendFromDrop, PhaseDescendHome:
		return true
	}
	return false
}

// TargetBound reports whether the phase depends on the reserved node staying alive
func (p Phase) TargetBound() bool {
	switch p {
	case PhaseAscendToCruise, PhaseCruiseToResource, PhaseDescendToResource, PhaseHarvest:
		return true
	}
	return false
}
