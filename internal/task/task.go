// Package task schedules cancellable delayed and periodic callbacks.
//
// Screens own their timers through a Group, so closing the screen's session
// guarantees that no callback outlives it.
package task

import (
	"sync"
	"time"
)

// Handle controls one scheduled callback
type Handle interface {
	// Cancel stops the callback from running again. Safe to call repeatedly.
	Cancel()
	// Done is closed once the callback can no longer run.
	Done() <-chan struct{}
}

// Scheduler runs callbacks after a delay or on an interval
type Scheduler interface {
	// After runs fn once when d has elapsed.
	After(d time.Duration, fn func()) Handle
	// Every runs fn each d until it returns false or the handle is cancelled.
	Every(d time.Duration, fn func() bool) Handle
}

type handle struct {
	once sync.Once
	stop chan struct{}
	done chan struct{}
}

func newHandle() *handle {
	return &handle{stop: make(chan struct{}), done: make(chan struct{})}
}

func (h *handle) Cancel() {
	h.once.Do(func() { close(h.stop) })
}

func (h *handle) Done() <-chan struct{} {
	return h.done
}

func (h *handle) stopped() bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

// Cancelled returns a handle that has already terminated
func Cancelled() Handle {
	h := newHandle()
	h.Cancel()
	close(h.done)
	return h
}

// Real is the wall-clock Scheduler
type Real struct{}

// After implements Scheduler
func (Real) After(d time.Duration, fn func()) Handle {
	h := newHandle()
	go func() {
		defer close(h.done)
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-h.stop:
		case <-t.C:
			if !h.stopped() {
				fn()
			}
		}
	}()
	return h
}

// Every implements Scheduler
func (Real) Every(d time.Duration, fn func() bool) Handle {
	h := newHandle()
	go func() {
		defer close(h.done)
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-t.C:
				if h.stopped() || !fn() {
					return
				}
			}
		}
	}()
	return h
}
