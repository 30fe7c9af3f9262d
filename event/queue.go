package event

import (
	"sync/atomic"

	"github.com/lixenwraith/drone-harvest/parameter"
)

// Event is one queued simulation event
type Event struct {
	Type    EventType
	Payload any
	Tick    int64 // World tick at emission
}

// Emitter accepts events from simulation components
type Emitter interface {
	Emit(t EventType, payload any)
}

// Queue is a lock-free MPSC ring of simulation events
// Producers claim a sequence number with an atomic add and publish the slot once written;
// the single consumer (world tick) reads published slots in sequence order
//
// A full ring overwrites its oldest unread event; Dropped counts those overwrites
type Queue struct {
	slots   [parameter.EventQueueSize]slot
	head    atomic.Uint64 // Next sequence to read
	tail    atomic.Uint64 // Next sequence to claim
	dropped atomic.Uint64
}

type slot struct {
	ev    Event
	ready atomic.Bool // Set after ev is fully written
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push claims the next sequence and publishes ev into its slot
func (q *Queue) Push(ev Event) {
	seq := q.tail.Add(1) - 1
	s := &q.slots[seq&parameter.EventBufferMask]
	s.ev = ev
	s.ready.Store(true)

	// seq landed on a slot still owned by an unread event
	if seq >= q.head.Load()+parameter.EventQueueSize {
		q.dropped.Add(1)
		q.advanceHead(seq + 1 - parameter.EventQueueSize)
	}
}

// Consume returns every published event in FIFO order, stopping at the first unfinished write
func (q *Queue) Consume() []Event {
	tail := q.tail.Load()
	from := q.head.Load()
	if tail > parameter.EventQueueSize {
		from = max(from, tail-parameter.EventQueueSize)
	}
	if from >= tail {
		return nil
	}

	var out []Event
	for seq := from; seq < tail; seq++ {
		s := &q.slots[seq&parameter.EventBufferMask]
		if !s.ready.Load() {
			break
		}
		out = append(out, s.ev)
		s.ready.Store(false)
	}
	q.advanceHead(from + uint64(len(out)))
	return out
}

// advanceHead moves head forward to at least to; head never moves back
func (q *Queue) advanceHead(to uint64) {
	for {
		cur := q.head.Load()
		if cur >= to || q.head.CompareAndSwap(cur, to) {
			return
		}
	}
}

// Len returns approximate pending event count
func (q *Queue) Len() int {
	head, tail := q.head.Load(), q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, parameter.EventQueueSize))
}

// Dropped returns how many unread events were overwritten since creation
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
