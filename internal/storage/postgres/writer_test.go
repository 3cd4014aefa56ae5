package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/storage/postgres"
)

type memLog struct {
	mu   sync.Mutex
	rows []postgres.ShotRecord
	fail bool
}

func (m *memLog) Record(_ context.Context, r postgres.ShotRecord) (postgres.ShotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return postgres.ShotRecord{}, errors.New("connection refused")
	}
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *memLog) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type named string

func (n named) ID() string                    { return string(n) }
func (n named) Name() string                  { return string(n) }
func (n named) Body() combat.PhysicsBody      { return nil }
func (n named) Damageable() combat.Damageable { return nil }

func shot(target combat.Target, class combat.Classification) combat.Shot {
	return combat.Shot{CharacterID: "alice", WeaponID: "rifle", ShotsLeft: 3,
		Outcome: combat.Outcome{Classification: class, Target: target}}
}

func TestRecordFromShot(t *testing.T) {
	r := postgres.RecordFromShot(shot(named("bob"), combat.Blocked))
	assert.Equal(t, postgres.ShotRecord{CharacterID: "alice", WeaponID: "rifle", Classification: "blocked", TargetName: "bob"}, r)

	r = postgres.RecordFromShot(shot(nil, combat.NoHit))
	assert.Equal(t, "no_hit", r.Classification)
	assert.Empty(t, r.TargetName)
}

func TestShotWriter_WritesQueuedShots(t *testing.T) {
	log := &memLog{}
	w := postgres.NewShotWriter(log, 16, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for range 5 {
		w.OnShot(shot(named("bob"), combat.Blocked))
	}
	require.Eventually(t, func() bool { return log.len() == 5 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int64(5), w.Written())
	assert.Zero(t, w.Dropped())
}

func TestShotWriter_FlushesOnCancel(t *testing.T) {
	log := &memLog{}
	w := postgres.NewShotWriter(log, 8, nil)
	for range 3 {
		w.OnShot(shot(nil, combat.NoHit))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 3, log.len())
}

func TestShotWriter_DropsWhenFullWithoutBlocking(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := postgres.NewShotWriter(&memLog{}, 2, zap.New(core))
	for range 5 {
		w.OnShot(shot(nil, combat.NoHit))
	}
	assert.Equal(t, int64(3), w.Dropped())
	assert.Equal(t, 1, logs.FilterMessage("shot log buffer full; dropping records").Len())
}

func TestShotWriter_RecordErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w := postgres.NewShotWriter(&memLog{fail: true}, 4, zap.New(core))
	w.OnShot(shot(nil, combat.NoHit))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Zero(t, w.Written())
	assert.Equal(t, 1, logs.FilterMessage("recording shot").Len())
}

func TestNewShotWriter_Panics(t *testing.T) {
	assert.Panics(t, func() { postgres.NewShotWriter(nil, 1, nil) })
	assert.Panics(t, func() { postgres.NewShotWriter(&memLog{}, 0, nil) })
}
