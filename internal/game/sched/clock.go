// Package sched provides frame-driven timers. All callbacks run on the goroutine
// that advances the Clock; nothing here starts goroutines except Loop.
package sched

import (
	"container/heap"
	"fmt"
	"time"
)

// Handle identifies a scheduled timer. The zero Handle never refers to a timer.
type Handle uint64

// Scheduler is the delayed-invocation capability handed to gameplay code.
type Scheduler interface {
	// Schedule arranges for fn to run after delay, and every delay thereafter
	// when repeating is true.
	Schedule(delay time.Duration, repeating bool, fn func()) Handle
	// Cancel stops the timer. Cancelling an inactive or zero handle is a no-op.
	Cancel(h Handle)
	// Active reports whether h will fire again.
	Active(h Handle) bool
}

type timer struct {
	id        Handle
	due       time.Duration
	period    time.Duration
	repeating bool
	fn        func()
	seq       uint64
	index     int
}

// Clock is a set of timers ordered by deadline and advanced explicitly by
// frame time. It is not safe for concurrent use; the owning frame loop is the
// only caller.
//
// Invariant: every timer in the queue is present in timers and vice versa.
type Clock struct {
	now    time.Duration
	nextID Handle
	seq    uint64
	timers map[Handle]*timer
	queue  timerQueue
}

// NewClock returns a Clock at time zero with no timers.
func NewClock() *Clock {
	return &Clock{timers: make(map[Handle]*timer)}
}

// Now returns the accumulated frame time.
func (c *Clock) Now() time.Duration { return c.now }

// Pending returns the number of active timers.
func (c *Clock) Pending() int { return len(c.timers) }

// Schedule registers fn to fire delay after Now. A negative delay is treated as zero.
//
// Precondition: fn must not be nil; repeating timers need delay > 0 (panics otherwise).
// Postcondition: Returns a non-zero handle that is Active until it fires (one-shot) or is cancelled.
func (c *Clock) Schedule(delay time.Duration, repeating bool, fn func()) Handle {
	if fn == nil {
		panic("sched: Clock.Schedule: fn must not be nil")
	}
	if repeating && delay <= 0 {
		panic(fmt.Sprintf("sched: Clock.Schedule: repeating period must be > 0, got %s", delay))
	}
	if delay < 0 {
		delay = 0
	}
	c.nextID++
	c.seq++
	t := &timer{
		id:        c.nextID,
		due:       c.now + delay,
		period:    delay,
		repeating: repeating,
		fn:        fn,
		seq:       c.seq,
	}
	c.timers[t.id] = t
	heap.Push(&c.queue, t)
	return t.id
}

// Cancel removes the timer identified by h. Safe to call repeatedly and from
// inside a timer callback, including the timer's own.
func (c *Clock) Cancel(h Handle) {
	t, ok := c.timers[h]
	if !ok {
		return
	}
	delete(c.timers, h)
	if t.index >= 0 {
		heap.Remove(&c.queue, t.index)
	}
}

// Active reports whether h is still scheduled.
func (c *Clock) Active(h Handle) bool {
	_, ok := c.timers[h]
	return ok
}

// Advance moves the clock forward by dt and fires every timer whose deadline
// falls within the window, in deadline order (ties in scheduling order). A
// repeating timer fires once per elapsed period. While a callback runs, Now
// reports that timer's deadline.
//
// Precondition: dt >= 0 (panics otherwise).
// Postcondition: Now() has increased by dt.
func (c *Clock) Advance(dt time.Duration) {
	if dt < 0 {
		panic(fmt.Sprintf("sched: Clock.Advance: dt must be >= 0, got %s", dt))
	}
	target := c.now + dt
	for c.queue.Len() > 0 {
		t := c.queue[0]
		if t.due > target {
			break
		}
		heap.Pop(&c.queue)
		c.now = t.due
		if t.repeating {
			t.due += t.period
			c.seq++
			t.seq = c.seq
			heap.Push(&c.queue, t)
		} else {
			delete(c.timers, t.id)
		}
		t.fn()
	}
	c.now = target
}

type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
