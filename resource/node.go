package resource

import (
	"sync/atomic"

	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// Node is one harvestable resource in the world
// Reservation and liveness are written only under the owning Registry's lock
type Node struct {
	ID       core.Entity
	Position vmath.Vec3F

	faction  atomic.Int64 // Claimant faction copy, 0 until claimed
	reserved atomic.Bool
	alive    atomic.Bool
}

// NewNode returns an unregistered, unreserved node
func NewNode(id core.Entity, pos vmath.Vec3F) *Node {
	return &Node{ID: id, Position: pos}
}

// Reserved reports whether a drone holds the node
func (n *Node) Reserved() bool { return n.reserved.Load() }

// Alive reports whether the node is registered and not yet consumed
func (n *Node) Alive() bool { return n.alive.Load() }

// Faction returns the faction id of the claimant, 0 if never claimed
func (n *Node) Faction() int { return int(n.faction.Load()) }
