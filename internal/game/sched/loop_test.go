package sched_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/gunfire/internal/game/sched"
)

func TestLoop_StepDrainsPostsBeforeAdvancing(t *testing.T) {
	clock := sched.NewClock()
	loop := sched.NewLoop(clock, 10*time.Millisecond, zaptest.NewLogger(t))

	var order []string
	require.True(t, loop.Post(func() {
		order = append(order, "post")
		clock.Schedule(0, false, func() { order = append(order, "timer") })
	}))
	loop.OnTick(func(now time.Duration) { order = append(order, "tick") })

	loop.Step(10 * time.Millisecond)
	assert.Equal(t, []string{"post", "timer", "tick"}, order)
	assert.Equal(t, uint64(1), loop.Frames())
	assert.Equal(t, 10*time.Millisecond, clock.Now())
}

func TestLoop_PostDropsWhenFull(t *testing.T) {
	loop := sched.NewLoop(sched.NewClock(), time.Millisecond, zaptest.NewLogger(t))
	for i := 0; i < sched.DefaultQueueSize; i++ {
		require.True(t, loop.Post(func() {}))
	}
	assert.False(t, loop.Post(func() {}))
}

func TestLoop_StartRunsFramesUntilCancelled(t *testing.T) {
	loop := sched.NewLoop(sched.NewClock(), 5*time.Millisecond, zaptest.NewLogger(t))
	var ran atomic.Bool
	require.True(t, loop.Post(func() { ran.Store(true) }))

	ctx, cancel := context.WithCancel(context.Background())
	loop.Start(ctx)

	deadline := time.After(2 * time.Second)
	for loop.Frames() < 3 {
		select {
		case <-deadline:
			t.Fatal("loop did not advance")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	cancel()
	assert.True(t, ran.Load())

	time.Sleep(20 * time.Millisecond)
	assert.False(t, loop.Post(func() {}), "post after stop must be rejected")
}

func TestLoop_RunReturnsAfterStop(t *testing.T) {
	loop := sched.NewLoop(sched.NewClock(), time.Millisecond, nil)
	done := make(chan struct{})
	go func() {
		loop.Run(context.Background())
		close(done)
	}()
	require.Eventually(t, func() bool { return loop.Frames() > 0 }, time.Second, time.Millisecond)
	loop.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestLoop_StopIdempotent(t *testing.T) {
	loop := sched.NewLoop(sched.NewClock(), time.Millisecond, nil)
	loop.Stop()
	loop.Stop()
}

func TestNewLoop_PanicsOnBadArgs(t *testing.T) {
	assert.Panics(t, func() { sched.NewLoop(nil, time.Millisecond, nil) })
	assert.Panics(t, func() { sched.NewLoop(sched.NewClock(), 0, nil) })
}
