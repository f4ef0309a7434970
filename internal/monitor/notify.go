package monitor

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the number of unread snapshots a Notifier holds.
const DefaultBuffer = 16

// Detector retains the last published snapshot and decides whether a new
// scan is a change.
type Detector struct {
	mu         sync.RWMutex
	current    Snapshot
	generation uint64
}

// NewDetector returns a Detector whose retained snapshot is empty.
func NewDetector() *Detector {
	return &Detector{current: Snapshot{}}
}

// Observe retains next and returns true when it differs from the retained snapshot.
func (d *Detector) Observe(next Snapshot) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current.Equal(next) {
		return false
	}
	d.current = next.Clone()
	d.generation++
	return true
}

// Current returns a copy of the retained snapshot.
func (d *Detector) Current() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current.Clone()
}

// Generation counts the changes observed so far.
func (d *Detector) Generation() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.generation
}

// Notifier delivers snapshots over a bounded channel. Publishing never
// blocks: when the buffer is full the oldest unread snapshot is discarded.
type Notifier struct {
	ch      chan Snapshot
	dropped atomic.Uint64
}

// NewNotifier creates a Notifier buffering up to size snapshots.
func NewNotifier(size int) *Notifier {
	if size < 1 {
		size = 1
	}
	return &Notifier{ch: make(chan Snapshot, size)}
}

// Publish queues s for the subscriber. It must be called from a single goroutine.
func (n *Notifier) Publish(s Snapshot) {
	for {
		select {
		case n.ch <- s:
			return
		default:
		}
		select {
		case <-n.ch:
			n.dropped.Add(1)
		default:
		}
	}
}

// Updates is the subscriber side of the Notifier.
func (n *Notifier) Updates() <-chan Snapshot {
	return n.ch
}

// Dropped counts snapshots discarded because the subscriber fell behind.
func (n *Notifier) Dropped() uint64 {
	return n.dropped.Load()
}
