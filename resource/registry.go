// Package resource tracks harvestable nodes and spawns them into the world
package resource

import (
	"math"
	"sync"

	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/tally"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// Registry is the set of live resource nodes
// Search and claim share one mutex so ReserveNearest is atomic across callers
type Registry struct {
	mu    sync.RWMutex
	nodes []*Node
	index map[*Node]int

	ids     *core.EntityAllocator
	counter *tally.Counter
	events  event.Emitter
}

// NewRegistry creates an empty registry
// counter and events may be nil in isolation tests
func NewRegistry(ids *core.EntityAllocator, counter *tally.Counter, events event.Emitter) *Registry {
	if ids == nil {
		ids = core.NewEntityAllocator()
	}
	return &Registry{
		index:   make(map[*Node]int),
		ids:     ids,
		counter: counter,
		events:  events,
	}
}

func (r *Registry) emit(t event.EventType, n *Node) {
	if r.events == nil {
		return
	}
	r.events.Emit(t, &event.NodePayload{Node: n.ID, Faction: n.Faction(), Position: n.Position})
}

// Spawn allocates and registers a new node at pos
func (r *Registry) Spawn(pos vmath.Vec3F) *Node {
	n := NewNode(r.ids.Next(), pos)
	r.Register(n)
	r.emit(event.EventNodeSpawned, n)
	return n
}

// Register adds n to the live set, no-op if already present
func (r *Registry) Register(n *Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[n]; ok {
		return
	}
	n.alive.Store(true)
	r.index[n] = len(r.nodes)
	r.nodes = append(r.nodes, n)
}

// Unregister removes n from the live set, reports whether it was present
func (r *Registry) Unregister(n *Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(n)
}

// unregisterLocked swap-removes n; caller holds mu
func (r *Registry) unregisterLocked(n *Node) bool {
	i, ok := r.index[n]
	if !ok {
		return false
	}
	last := len(r.nodes) - 1
	if i != last {
		moved := r.nodes[last]
		r.nodes[i] = moved
		r.index[moved] = i
	}
	r.nodes[last] = nil
	r.nodes = r.nodes[:last]
	delete(r.index, n)
	n.alive.Store(false)
	return true
}

// FindNearestUnreserved returns the closest unreserved node, nil if none
// Ties resolve to the first node in registration order
func (r *Registry) FindNearestUnreserved(from vmath.Vec3F) *Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nearestLocked(from)
}

func (r *Registry) nearestLocked(from vmath.Vec3F) *Node {
	var best *Node
	bestDist := math.Inf(1)
	for _, n := range r.nodes {
		if n.reserved.Load() {
			continue
		}
		if d := vmath.V3FMagSq(vmath.V3FSub(n.Position, from)); d < bestDist {
			best, bestDist = n, d
		}
	}
	return best
}

// Claim reserves n for faction and credits the claim
// Fails for a node that is dead or already reserved
func (r *Registry) Claim(n *Node, faction int) bool {
	r.mu.Lock()
	ok := r.claimLocked(n, faction)
	r.mu.Unlock()
	if ok {
		r.emit(event.EventNodeClaimed, n)
	}
	return ok
}

func (r *Registry) claimLocked(n *Node, faction int) bool {
	if n == nil || !n.alive.Load() || n.reserved.Load() {
		return false
	}
	n.reserved.Store(true)
	n.faction.Store(int64(faction))
	if r.counter != nil {
		r.counter.Claim(faction)
	}
	return true
}

// ReserveNearest finds and claims the nearest unreserved node in one step
// Returns nil when the pool has nothing unreserved
func (r *Registry) ReserveNearest(from vmath.Vec3F, faction int) *Node {
	r.mu.Lock()
	n := r.nearestLocked(from)
	if n != nil && !r.claimLocked(n, faction) {
		n = nil
	}
	r.mu.Unlock()
	if n != nil {
		r.emit(event.EventNodeClaimed, n)
	}
	return n
}

// Release returns a live reserved node to the pool
func (r *Registry) Release(n *Node) bool {
	r.mu.Lock()
	ok := n != nil && n.alive.Load() && n.reserved.Load()
	if ok {
		n.reserved.Store(false)
	}
	r.mu.Unlock()
	if ok {
		r.emit(event.EventNodeReleased, n)
	}
	return ok
}

// Harvest consumes n; the node leaves the world
func (r *Registry) Harvest(n *Node) bool {
	r.mu.Lock()
	ok := r.unregisterLocked(n)
	r.mu.Unlock()
	if ok {
		r.emit(event.EventNodeHarvested, n)
	}
	return ok
}

// Destroy removes n on behalf of an external actor
// A drone holding the reservation notices through Node.Alive and aborts
func (r *Registry) Destroy(n *Node) bool {
	r.mu.Lock()
	ok := r.unregisterLocked(n)
	if ok {
		n.reserved.Store(false)
	}
	r.mu.Unlock()
	if ok {
		r.emit(event.EventNodeDestroyed, n)
	}
	return ok
}

// HasUnreserved reports whether at least one node is available
func (r *Registry) HasUnreserved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.nodes {
		if !n.reserved.Load() {
			return true
		}
	}
	return false
}

// Len returns the number of live nodes
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// Reserved returns the number of live reserved nodes
func (r *Registry) Reserved() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := 0
	for _, n := range r.nodes {
		if n.reserved.Load() {
			c++
		}
	}
	return c
}

// Nodes returns a snapshot of live nodes
func (r *Registry) Nodes() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}
