package task

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealAfterRuns(t *testing.T) {
	var fired atomic.Bool
	h := Real{}.After(5*time.Millisecond, func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return isDone(h) }, time.Second, time.Millisecond)
}

func TestRealAfterCancelled(t *testing.T) {
	var fired atomic.Bool
	h := Real{}.After(20*time.Millisecond, func() { fired.Store(true) })
	h.Cancel()
	h.Cancel()

	<-h.Done()
	time.Sleep(40 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestRealEveryStopsWhenCallbackDeclines(t *testing.T) {
	var count atomic.Int32
	h := Real{}.Every(time.Millisecond, func() bool {
		return count.Add(1) < 3
	})

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("interval did not stop")
	}
	assert.Equal(t, int32(3), count.Load())
}

func TestCancelledHandle(t *testing.T) {
	h := Cancelled()
	assert.True(t, isDone(h))
	h.Cancel()
}

func TestGroupCloseCancelsEverything(t *testing.T) {
	m := NewManual()
	g := NewGroup(m)

	var fired int
	g.After(time.Second, func() { fired++ })
	g.Every(time.Second, func() bool { fired++; return true })
	require.Equal(t, 2, g.Pending())

	g.Close()
	assert.True(t, g.Closed())
	assert.Equal(t, 0, g.Pending())
	assert.Equal(t, 0, m.Pending())

	m.Advance(10 * time.Second)
	assert.Equal(t, 0, fired)

	h := g.After(time.Millisecond, func() { fired++ })
	assert.True(t, isDone(h))
	m.Advance(time.Second)
	assert.Equal(t, 0, fired)
}

func TestGroupPrunesFinishedHandles(t *testing.T) {
	m := NewManual()
	g := NewGroup(m)
	for i := 0; i < 5; i++ {
		g.After(time.Millisecond, func() {})
	}
	m.Advance(time.Millisecond)
	assert.Equal(t, 0, g.Pending())

	g.After(time.Second, func() {})
	assert.Equal(t, 1, g.Pending())
	assert.Len(t, g.handles, 1)
}

func TestManualFiresInTimeOrder(t *testing.T) {
	m := NewManual()
	var order []string
	m.After(300*time.Millisecond, func() { order = append(order, "c") })
	m.After(100*time.Millisecond, func() { order = append(order, "a") })
	m.After(100*time.Millisecond, func() { order = append(order, "b") })

	m.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, order)

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 300*time.Millisecond, m.Elapsed())
}

func TestManualChainedCallbacks(t *testing.T) {
	m := NewManual()
	var at []time.Duration
	m.After(time.Second, func() {
		at = append(at, m.Elapsed())
		m.After(time.Second, func() { at = append(at, m.Elapsed()) })
	})

	m.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
}

func TestManualEvery(t *testing.T) {
	m := NewManual()
	ticks := 0
	h := m.Every(200*time.Millisecond, func() bool {
		ticks++
		return ticks < 10
	})

	m.Advance(time.Second)
	assert.Equal(t, 5, ticks)
	assert.False(t, isDone(h))

	m.Advance(time.Hour)
	assert.Equal(t, 10, ticks)
	assert.True(t, isDone(h))
}

func isDone(h Handle) bool {
	select {
	case <-h.Done():
		return true
	default:
		return false
	}
}
