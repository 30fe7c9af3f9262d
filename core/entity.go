package core

import "sync/atomic"

// Entity is a stable identity shared by drones and resource nodes
// Zero is never allocated and means "no entity"
type Entity uint64

// EntityAllocator hands out monotonically increasing entity IDs
// Safe for concurrent use; a single allocator is shared by one simulation
type EntityAllocator struct {
	next atomic.Uint64
}

// NewEntityAllocator creates an allocator whose first ID is 1
func NewEntityAllocator() *EntityAllocator {
	return &EntityAllocator{}
}

// Next reserves a new entity ID
func (a *EntityAllocator) Next() Entity {
	return Entity(a.next.Add(1))
}

// Issued returns the number of IDs handed out so far
func (a *EntityAllocator) Issued() uint64 {
	return a.next.Load()
}
