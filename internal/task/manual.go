package task

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance instead of the wall clock.
// Callbacks run synchronously on the goroutine calling Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	seq      int
	at       time.Duration
	interval time.Duration
	once     func()
	tick     func() bool
	done     chan struct{}
	finished bool
}

type manualHandle struct {
	m *Manual
	t *manualTimer
}

func (h manualHandle) Cancel() {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	h.m.finish(h.t)
}

func (h manualHandle) Done() <-chan struct{} {
	return h.t.done
}

// NewManual returns a scheduler whose clock starts at zero
func NewManual() *Manual {
	return &Manual{}
}

// After implements Scheduler
func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(&manualTimer{at: d, once: fn})
}

// Every implements Scheduler
func (m *Manual) Every(d time.Duration, fn func() bool) Handle {
	return m.add(&manualTimer{at: d, interval: d, tick: fn})
}

func (m *Manual) add(t *manualTimer) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t.seq = m.seq
	t.at += m.now
	t.done = make(chan struct{})
	m.timers = append(m.timers, t)
	return manualHandle{m: m, t: t}
}

// finish must be called with m.mu held
func (m *Manual) finish(t *manualTimer) {
	if t.finished {
		return
	}
	t.finished = true
	close(t.done)
	for i, other := range m.timers {
		if other == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			break
		}
	}
}

// Elapsed returns the simulated time since creation
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of live timers
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// Callbacks scheduled by other callbacks fire too when they fall inside d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		if next.tick == nil {
			m.finish(next)
		} else {
			next.at += next.interval
		}
		m.mu.Unlock()

		if next.tick == nil {
			next.once()
			continue
		}
		if !next.tick() {
			m.mu.Lock()
			m.finish(next)
			m.mu.Unlock()
		}
	}
}

// nextDue must be called with m.mu held
func (m *Manual) nextDue(target time.Duration) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}
