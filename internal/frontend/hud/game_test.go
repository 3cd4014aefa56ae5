package hud_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/gunfire/internal/config"
	"github.com/cory-johannsen/gunfire/internal/frontend/hud"
	"github.com/cory-johannsen/gunfire/internal/game/arena"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/input"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
	"github.com/cory-johannsen/gunfire/internal/game/weapon"
)

// inline runs posted work immediately, standing in for the frame thread.
type inline struct{ refuse bool }

func (p inline) Post(fn func()) bool {
	if p.refuse {
		return false
	}
	fn()
	return true
}

func newArena(t *testing.T) *arena.Arena {
	t.Helper()
	return arena.New(config.Default().Combat, weapon.NewRegistry(), sched.NewClock(), &event.Recorder{}, zaptest.NewLogger(t))
}

func TestArenaGame_JoinAimInputLeave(t *testing.T) {
	a := newArena(t)
	g := hud.NewArenaGame(a, inline{}, []geom.Vec3{geom.V(0, 0, 0), geom.V(500, 0, 0)}, zaptest.NewLogger(t))

	w1, err := g.Join(context.Background(), "alice")
	require.NoError(t, err)
	w2, err := g.Join(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", w1.Name)
	assert.Equal(t, 8, w1.ShotsPerRack)
	assert.Equal(t, 1.0, w1.Health)

	bob, err := a.Character(w2.CharacterID)
	require.NoError(t, err)
	assert.Equal(t, geom.V(500, 0, 0), bob.Transform().Position)

	g.Aim(w1.CharacterID, geom.V(0, 0, 0), geom.V(0, 3, 0))
	alice, err := a.Character(w1.CharacterID)
	require.NoError(t, err)
	assert.Equal(t, geom.V(0, 1, 0), alice.Transform().Forward)

	g.Input(w1.CharacterID, input.FireStarted)
	assert.Equal(t, 8, alice.CombatState().ShotsLeft(), "unarmed characters do not fire")

	g.Leave(w1.CharacterID)
	_, err = a.Character(w1.CharacterID)
	assert.ErrorIs(t, err, arena.ErrUnknownCharacter)
	assert.NotPanics(t, func() {
		g.Input(w1.CharacterID, input.Reload)
		g.Aim(w1.CharacterID, geom.Vec3{}, geom.V(1, 0, 0))
	})
}

func TestArenaGame_JoinRefused(t *testing.T) {
	g := hud.NewArenaGame(newArena(t), inline{refuse: true}, nil, nil)
	_, err := g.Join(context.Background(), "alice")
	assert.ErrorIs(t, err, hud.ErrBusy)
}

func TestArenaGame_JoinCancelledBeforeFrame(t *testing.T) {
	a := newArena(t)
	clock := sched.NewClock()
	loop := sched.NewLoop(clock, 16*time.Millisecond, nil)
	g := hud.NewArenaGame(a, loop, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Join(ctx, "alice")
	require.ErrorIs(t, err, context.Canceled)

	loop.Step(0)
	assert.Empty(t, a.Characters())
}

// queued holds posted work until run is called.
type queued struct{ fns []func() }

func (q *queued) Post(fn func()) bool {
	q.fns = append(q.fns, fn)
	return true
}

func (q *queued) run() {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
}

func TestArenaGame_JoinCancelledLoopNeverRuns(t *testing.T) {
	a := newArena(t)
	q := &queued{}
	g := hud.NewArenaGame(a, q, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	_, err := g.Join(ctx, "alice")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, q.fns, 1)

	q.run()
	assert.Empty(t, a.Characters())
	assert.Empty(t, q.fns, "nothing left to clean up")
}
