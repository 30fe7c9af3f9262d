// Package drop serialises access to a base's single drop slot
package drop

import (
	"slices"
	"sync"
)

// NotQueued is the position reported for an agent without a ticket
const NotQueued = -1

// Coordinator is a FIFO of agents waiting for the drop slot
// Only the head may descend; Dequeue succeeds for the head alone
type Coordinator[T comparable] struct {
	mu    sync.Mutex
	queue []T
}

func NewCoordinator[T comparable]() *Coordinator[T] {
	return &Coordinator[T]{}
}

// Enqueue appends a if absent and returns its position
// Re-enqueueing an agent already in line returns its current position
func (c *Coordinator[T]) Enqueue(a T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.queue, a); i >= 0 {
		return i
	}
	c.queue = append(c.queue, a)
	return len(c.queue) - 1
}

// PositionOf returns the 0-based position of a, NotQueued if absent
func (c *Coordinator[T]) PositionOf(a T) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Index(c.queue, a)
}

// Dequeue removes a only when it is the head
func (c *Coordinator[T]) Dequeue(a T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 || c.queue[0] != a {
		return false
	}
	var zero T
	c.queue[0] = zero
	c.queue = c.queue[1:]
	return true
}

// Remove drops a from any position; agents behind it move up
func (c *Coordinator[T]) Remove(a T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.queue, a)
	if i < 0 {
		return false
	}
	c.queue = slices.Delete(c.queue, i, i+1)
	return true
}

func (c *Coordinator[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Head returns the agent allowed into the slot
func (c *Coordinator[T]) Head() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		var zero T
		return zero, false
	}
	return c.queue[0], true
}

// Snapshot returns the queue in order
func (c *Coordinator[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queue)
}
