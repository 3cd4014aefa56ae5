package sched_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gunfire/internal/game/sched"
)

func TestClock_OneShotFiresOnceAtDeadline(t *testing.T) {
	c := sched.NewClock()
	var calls int
	h := c.Schedule(time.Second, false, func() { calls++ })
	require.True(t, c.Active(h))

	c.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, calls)
	c.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.False(t, c.Active(h))

	c.Advance(10 * time.Second)
	assert.Equal(t, 1, calls)
}

func TestClock_RepeatingFiresEachPeriod(t *testing.T) {
	c := sched.NewClock()
	var at []time.Duration
	c.Schedule(500*time.Millisecond, true, func() { at = append(at, c.Now()) })

	c.Advance(1600 * time.Millisecond)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 1500 * time.Millisecond}, at)
	assert.Equal(t, 1600*time.Millisecond, c.Now())
}

func TestClock_CancelIsIdempotent(t *testing.T) {
	c := sched.NewClock()
	var calls int
	h := c.Schedule(time.Second, true, func() { calls++ })
	c.Cancel(h)
	c.Cancel(h)
	c.Cancel(0)
	c.Advance(5 * time.Second)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, c.Pending())
}

func TestClock_CallbackCancelsItself(t *testing.T) {
	c := sched.NewClock()
	var calls int
	var h sched.Handle
	h = c.Schedule(100*time.Millisecond, true, func() {
		calls++
		if calls == 3 {
			c.Cancel(h)
		}
	})
	c.Advance(time.Second)
	assert.Equal(t, 3, calls)
	assert.False(t, c.Active(h))
}

func TestClock_CallbackSchedulesFollowUp(t *testing.T) {
	c := sched.NewClock()
	var order []string
	c.Schedule(100*time.Millisecond, false, func() {
		order = append(order, "first")
		c.Schedule(100*time.Millisecond, false, func() { order = append(order, "second") })
	})
	c.Advance(150 * time.Millisecond)
	assert.Equal(t, []string{"first"}, order)
	c.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestClock_TiesFireInSchedulingOrder(t *testing.T) {
	c := sched.NewClock()
	var order []int
	for i := 0; i < 5; i++ {
		c.Schedule(time.Second, false, func() { order = append(order, i) })
	}
	c.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestClock_ZeroDelayFiresOnNextAdvance(t *testing.T) {
	c := sched.NewClock()
	var calls int
	c.Schedule(0, false, func() { calls++ })
	assert.Equal(t, 0, calls)
	c.Advance(0)
	assert.Equal(t, 1, calls)
}

func TestClock_PanicsOnBadInput(t *testing.T) {
	c := sched.NewClock()
	assert.Panics(t, func() { c.Schedule(0, true, func() {}) })
	assert.Panics(t, func() { c.Schedule(time.Second, false, nil) })
	assert.Panics(t, func() { c.Advance(-time.Second) })
}

// TestProperty_Clock_RepeatingCount asserts a repeating timer fires
// floor(T/period) times regardless of how T is split into frames.
func TestProperty_Clock_RepeatingCount(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		periodMs := rapid.IntRange(1, 1000).Draw(rt, "period_ms")
		frames := rapid.SliceOfN(rapid.IntRange(0, 400), 1, 50).Draw(rt, "frames_ms")

		c := sched.NewClock()
		var calls int
		c.Schedule(time.Duration(periodMs)*time.Millisecond, true, func() { calls++ })

		total := 0
		for _, f := range frames {
			c.Advance(time.Duration(f) * time.Millisecond)
			total += f
		}
		if want := total / periodMs; calls != want {
			rt.Fatalf("period=%dms total=%dms: got %d calls, want %d", periodMs, total, calls, want)
		}
	})
}
