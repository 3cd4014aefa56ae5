package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
)

// ShotRecorder is the write side of a ShotLog.
type ShotRecorder interface {
	Record(ctx context.Context, r ShotRecord) (ShotRecord, error)
}

// DefaultWriteTimeout bounds a single insert issued by a ShotWriter.
const DefaultWriteTimeout = 2 * time.Second

// ShotWriter moves shot records off the frame thread. OnShot never blocks:
// when the buffer is full the record is dropped and counted.
type ShotWriter struct {
	rec     ShotRecorder
	queue   chan ShotRecord
	timeout time.Duration
	logger  *zap.Logger
	written atomic.Int64
	dropped atomic.Int64
}

// NewShotWriter creates a ShotWriter with room for buffer pending records.
//
// Precondition: rec must not be nil; buffer > 0.
func NewShotWriter(rec ShotRecorder, buffer int, logger *zap.Logger) *ShotWriter {
	if rec == nil || buffer <= 0 {
		panic("postgres: NewShotWriter: recorder must not be nil and buffer must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShotWriter{
		rec:     rec,
		queue:   make(chan ShotRecord, buffer),
		timeout: DefaultWriteTimeout,
		logger:  logger,
	}
}

// OnShot implements combat.ShotObserver.
func (w *ShotWriter) OnShot(s combat.Shot) {
	select {
	case w.queue <- RecordFromShot(s):
	default:
		if w.dropped.Add(1) == 1 {
			w.logger.Warn("shot log buffer full; dropping records")
		}
	}
}

// Written returns the number of records stored.
func (w *ShotWriter) Written() int64 { return w.written.Load() }

// Dropped returns the number of records discarded because the buffer was full.
func (w *ShotWriter) Dropped() int64 { return w.dropped.Load() }

// Run writes queued records until ctx is cancelled, then flushes what is
// still buffered.
//
// Postcondition: returns nil after the flush.
func (w *ShotWriter) Run(ctx context.Context) error {
	for {
		select {
		case r := <-w.queue:
			w.write(ctx, r)
		case <-ctx.Done():
			flush := context.WithoutCancel(ctx)
			for {
				select {
				case r := <-w.queue:
					w.write(flush, r)
				default:
					return nil
				}
			}
		}
	}
}

func (w *ShotWriter) write(ctx context.Context, r ShotRecord) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if _, err := w.rec.Record(ctx, r); err != nil {
		w.logger.Warn("recording shot",
			zap.String("character", r.CharacterID),
			zap.String("weapon", r.WeaponID),
			zap.Error(err),
		)
		return
	}
	w.written.Add(1)
}
