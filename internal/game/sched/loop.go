package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultQueueSize bounds the number of posted commands waiting for the next frame.
const DefaultQueueSize = 256

// Loop is the single mutator thread for a Clock. Other goroutines hand work to
// it through Post; each frame drains posted work, advances the clock by the
// fixed interval, then runs tick hooks.
//
// Invariant: posted functions, timer callbacks, and tick hooks never run concurrently.
type Loop struct {
	clock    *Clock
	interval time.Duration
	posts    chan func()
	logger   *zap.Logger

	mu    sync.Mutex
	hooks []func(now time.Duration)

	frames   atomic.Uint64
	stopOnce sync.Once
	done     chan struct{}
}

// NewLoop returns a stopped Loop driving clock at interval.
//
// Precondition: clock must not be nil; interval must be > 0 (panics otherwise).
// Postcondition: Returns a Loop ready to Start.
func NewLoop(clock *Clock, interval time.Duration, logger *zap.Logger) *Loop {
	if clock == nil {
		panic("sched.NewLoop: clock must not be nil")
	}
	if interval <= 0 {
		panic("sched.NewLoop: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		clock:    clock,
		interval: interval,
		posts:    make(chan func(), DefaultQueueSize),
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Clock returns the clock this loop advances.
func (l *Loop) Clock() *Clock { return l.clock }

// Frames returns the number of completed frames.
func (l *Loop) Frames() uint64 { return l.frames.Load() }

// OnTick registers fn to run at the end of every frame with the clock time.
func (l *Loop) OnTick(fn func(now time.Duration)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

// Post queues fn for the next frame. Safe for concurrent use.
//
// Postcondition: Returns false, dropping fn, when the queue is full or the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.posts <- fn:
		return true
	default:
		l.logger.Warn("frame queue full, dropping command", zap.Int("capacity", cap(l.posts)))
		return false
	}
}

// Step runs one frame of length dt on the calling goroutine.
//
// Precondition: must not be called concurrently with itself or a running Start.
func (l *Loop) Step(dt time.Duration) {
	for {
		select {
		case fn := <-l.posts:
			fn()
			continue
		default:
		}
		break
	}
	l.clock.Advance(dt)

	l.mu.Lock()
	hooks := make([]func(time.Duration), len(l.hooks))
	copy(hooks, l.hooks)
	l.mu.Unlock()
	for _, fn := range hooks {
		fn(l.clock.Now())
	}
	l.frames.Add(1)
}

// Start launches Run on a new goroutine.
func (l *Loop) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Run steps the loop once per interval on the calling goroutine until ctx is
// cancelled or Stop is called. The caller may touch frame-owned state after
// Run returns.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case <-ticker.C:
			l.Step(l.interval)
		}
	}
}

// Stop halts the frame goroutine. Calling Stop is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
