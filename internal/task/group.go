package task

import (
	"sync"
	"time"
)

// Group tracks the handles scheduled for one owner so they can be cancelled together
type Group struct {
	sched Scheduler

	mu      sync.Mutex
	handles []Handle
	closed  bool
}

// NewGroup creates a group scheduling on sched
func NewGroup(sched Scheduler) *Group {
	return &Group{sched: sched}
}

// After schedules fn once on the group. A closed group returns a cancelled handle.
func (g *Group) After(d time.Duration, fn func()) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return Cancelled()
	}
	h := g.sched.After(d, fn)
	g.track(h)
	return h
}

// Every schedules fn periodically on the group
func (g *Group) Every(d time.Duration, fn func() bool) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return Cancelled()
	}
	h := g.sched.Every(d, fn)
	g.track(h)
	return h
}

// track must be called with g.mu held
func (g *Group) track(h Handle) {
	live := g.handles[:0]
	for _, existing := range g.handles {
		select {
		case <-existing.Done():
		default:
			live = append(live, existing)
		}
	}
	g.handles = append(live, h)
}

// Pending returns the number of handles that have not terminated
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, h := range g.handles {
		select {
		case <-h.Done():
		default:
			n++
		}
	}
	return n
}

// Closed reports whether Close has been called
func (g *Group) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Close cancels every outstanding handle and rejects later scheduling
func (g *Group) Close() {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.closed = true
	g.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}
