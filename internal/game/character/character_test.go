package character_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/gunfire/internal/game/character"
	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/input"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
)

type emptyWorld struct{}

func (emptyWorld) RayCast(combat.Query) combat.Hit { return combat.Hit{} }

func newRifle(clock *sched.Clock, pub event.Publisher) *combat.Controller {
	r := combat.NewResolver(emptyWorld{}, combat.DefaultResolverConfig(), nil, nil)
	return combat.NewController("rifle", combat.DefaultTuning(), combat.Cues{Fire: "rifle_fire"}, nil, clock, r, pub, nil)
}

func TestNew_SpawnDefaults(t *testing.T) {
	rec := &event.Recorder{}
	c := character.New("alice", character.DefaultOptions(), rec, zaptest.NewLogger(t))
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, "alice", c.Name())
	assert.Equal(t, 8, c.CombatState().ShotsLeft())
	assert.Equal(t, 4, c.CombatState().AmmoRacks())
	assert.False(t, c.HasWeapon())
	assert.False(t, c.HasController())
	assert.Nil(t, c.Body())
	assert.NotNil(t, c.Damageable())
	assert.NotNil(t, c.Picker())

	c.Spawn()
	assert.Equal(t, []event.Event{event.HealthChanged{CharacterID: c.ID(), Health: 1.0}}, rec.Events())
}

func TestNew_PanicsOnBadArgs(t *testing.T) {
	assert.Panics(t, func() { character.New("", character.DefaultOptions(), &event.Recorder{}, nil) })
	assert.Panics(t, func() { character.New("bob", character.DefaultOptions(), nil, nil) })
}

func TestTakeDamage_PublishesAndLogsDepletionOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &event.Recorder{}
	c := character.New("alice", character.DefaultOptions(), rec, zap.New(core))
	by := combat.Instigator{ControllerID: "pc-bob", CharacterID: "bob"}

	for range 12 {
		c.TakeDamage(0.1, by)
	}
	health := rec.OfKind(event.KindHealthChanged)
	require.Len(t, health, 12)
	assert.InDelta(t, -0.2, health[11].(event.HealthChanged).Health, 1e-9)
	assert.Equal(t, 1, logs.FilterMessage("health depleted").Len())
}

func TestAttachWeapon(t *testing.T) {
	rec := &event.Recorder{}
	clock := sched.NewClock()
	c := character.New("alice", character.DefaultOptions(), rec, nil)

	rifle := newRifle(clock, rec)
	require.True(t, c.AttachWeapon(rifle, "GripPoint"))
	assert.True(t, c.HasWeapon())
	assert.Same(t, rifle, c.Weapon())
	assert.Equal(t, "GripPoint", c.Slot())
	assert.Equal(t, combat.Owner(c), rifle.Owner())

	attached := rec.OfKind(event.KindWeaponAttached)
	require.Len(t, attached, 1)
	assert.Equal(t, event.WeaponAttached{CharacterID: c.ID(), WeaponID: "rifle", Slot: "GripPoint"}, attached[0])
	assert.Len(t, rec.OfKind(event.KindAmmoChanged), 1)

	assert.False(t, c.AttachWeapon(newRifle(clock, rec), "GripPoint"), "second weapon rejected")
	assert.Same(t, rifle, c.Weapon())
	assert.False(t, c.AttachWeapon(nil, "GripPoint"))
}

func TestHandleInput_RequiresPossessionAndWeapon(t *testing.T) {
	rec := &event.Recorder{}
	clock := sched.NewClock()
	c := character.New("alice", character.DefaultOptions(), rec, nil)

	c.HandleInput(input.FireStarted)
	assert.Equal(t, 8, c.CombatState().ShotsLeft(), "no weapon")

	c.AttachWeapon(newRifle(clock, rec), "GripPoint")
	c.HandleInput(input.FireStarted)
	assert.Equal(t, 8, c.CombatState().ShotsLeft(), "no controller")

	c.Possess("pc-alice")
	require.True(t, c.HasController())
	assert.Equal(t, combat.Instigator{ControllerID: "pc-alice", CharacterID: c.ID()}, c.Instigator())
	c.HandleInput(input.FireStarted)
	assert.Equal(t, 7, c.CombatState().ShotsLeft())
	assert.Len(t, rec.Cues(event.CueFire), 1)
}

func TestDetachWeapon_StopsTimersKeepsArmedFlag(t *testing.T) {
	rec := &event.Recorder{}
	clock := sched.NewClock()
	c := character.New("alice", character.DefaultOptions(), rec, nil)
	c.Possess("pc-alice")
	c.AttachWeapon(newRifle(clock, rec), "GripPoint")
	c.HandleInput(input.FireStarted)
	c.HandleInput(input.Reload)
	require.True(t, c.Weapon().Reloading())

	c.DetachWeapon()
	c.DetachWeapon()
	assert.Nil(t, c.Weapon())
	assert.True(t, c.HasWeapon())
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, 7, c.CombatState().ShotsLeft())
	c.HandleInput(input.FireStarted)
	assert.Equal(t, 7, c.CombatState().ShotsLeft())
}

func TestMuzzleFollowsTransform(t *testing.T) {
	c := character.New("alice", character.DefaultOptions(), &event.Recorder{}, nil)
	tr := combat.Transform{Forward: c.Transform().Forward}
	tr.Position.Z = 90
	c.SetTransform(tr)
	assert.Equal(t, tr, c.Muzzle())
}
