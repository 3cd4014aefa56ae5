// Package character defines the combatant entity: its combat state, damage
// entry point, possession by a player controller, and weapon attachment.
package character

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/input"
	"github.com/cory-johannsen/gunfire/internal/game/pickup"
)

// Options configures a new Character.
type Options struct {
	// ID is assigned when empty.
	ID           string
	ShotsPerRack int
	AmmoRacks    int
	Health       float64
	Transform    combat.Transform
	// Body is the character's physics component; nil when it has none.
	Body combat.PhysicsBody
}

// DefaultOptions returns the spawn defaults facing +X.
func DefaultOptions() Options {
	return Options{
		ShotsPerRack: combat.DefaultShotsPerRack,
		AmmoRacks:    combat.DefaultAmmoRacks,
		Health:       combat.DefaultHealth,
		Transform:    combat.Transform{Forward: geom.V(1, 0, 0)},
	}
}

// Character is a player-controllable combatant. Every method runs on the frame thread.
type Character struct {
	id     string
	name   string
	state  *combat.State
	body   combat.PhysicsBody
	pub    event.Publisher
	logger *zap.Logger

	transform    combat.Transform
	controllerID string
	weapon       *combat.Controller
	slot         string
	depleted     bool
}

// New creates a Character. A fresh UUID is used unless opts.ID is set.
//
// Precondition: name must be non-empty; pub must not be nil; opts must satisfy combat.NewState.
func New(name string, opts Options, pub event.Publisher, logger *zap.Logger) *Character {
	if name == "" {
		panic("character: New: name must not be empty")
	}
	if pub == nil {
		panic("character: New: publisher must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	return &Character{
		id:        id,
		name:      name,
		state:     combat.NewState(opts.ShotsPerRack, opts.AmmoRacks, opts.Health),
		body:      opts.Body,
		pub:       pub,
		logger:    logger.With(zap.String("character", id), zap.String("name", name)),
		transform: opts.Transform,
	}
}

func (c *Character) ID() string                    { return c.id }
func (c *Character) Name() string                  { return c.name }
func (c *Character) Body() combat.PhysicsBody      { return c.body }
func (c *Character) Damageable() combat.Damageable { return c }
func (c *Character) CombatState() *combat.State    { return c.state }
func (c *Character) Weapon() *combat.Controller    { return c.weapon }
func (c *Character) Slot() string                  { return c.slot }
func (c *Character) HasWeapon() bool               { return c.state.HasWeapon() }
func (c *Character) Transform() combat.Transform   { return c.transform }
func (c *Character) HasController() bool           { return c.controllerID != "" }
func (c *Character) Picker() pickup.Picker         { return c }

// Spawn announces the initial health to the presentation layer.
func (c *Character) Spawn() {
	c.pub.Publish(event.HealthChanged{CharacterID: c.id, Health: c.state.Health()})
}

// Possess records the player controller driving the character. An empty id releases it.
func (c *Character) Possess(controllerID string) {
	c.controllerID = controllerID
}

// Instigator attributes this character's shots.
func (c *Character) Instigator() combat.Instigator {
	return combat.Instigator{ControllerID: c.controllerID, CharacterID: c.id}
}

// SetTransform moves the character.
func (c *Character) SetTransform(t combat.Transform) {
	c.transform = t
}

// Muzzle returns the muzzle socket transform. The socket sits at the
// character's position; the weapon adds its own forward offset.
func (c *Character) Muzzle() combat.Transform {
	return c.transform
}

// TakeDamage is the character's only damage entry point.
//
// Postcondition: health decreased by amount and a health-changed notification
// was published. Health at or below zero has no further effect.
func (c *Character) TakeDamage(amount float64, by combat.Instigator) {
	c.state.ApplyDamage(amount)
	c.pub.Publish(event.HealthChanged{CharacterID: c.id, Health: c.state.Health()})
	if c.state.Health() <= 0 && !c.depleted {
		c.depleted = true
		c.logger.Info("health depleted",
			zap.Float64("health", c.state.Health()),
			zap.String("instigator", by.CharacterID),
		)
	}
}

// AttachWeapon mounts ctrl at slot.
//
// Postcondition: returns false with no change when a weapon was already
// attached; otherwise HasWeapon is true, ctrl is bound to the character, and
// weapon-attached and ammo-changed notifications were published.
func (c *Character) AttachWeapon(ctrl *combat.Controller, slot string) bool {
	if ctrl == nil || c.state.HasWeapon() {
		return false
	}
	c.state.MarkArmed()
	c.weapon = ctrl
	c.slot = slot
	ctrl.Attach(c)
	c.pub.Publish(event.WeaponAttached{CharacterID: c.id, WeaponID: ctrl.WeaponID(), Slot: slot})
	c.pub.Publish(event.AmmoChanged{
		CharacterID:  c.id,
		ShotsPerRack: c.state.ShotsPerRack(),
		ShotsLeft:    c.state.ShotsLeft(),
		AmmoRacks:    c.state.AmmoRacks(),
		Mode:         string(ctrl.Mode()),
	})
	c.logger.Debug("weapon attached", zap.String("weapon", ctrl.WeaponID()), zap.String("slot", slot))
	return true
}

// DetachWeapon unbinds input from the weapon and cancels its timers. The
// character stays flagged as armed, so it cannot pick up another weapon.
func (c *Character) DetachWeapon() {
	if c.weapon == nil {
		return
	}
	c.weapon.Detach()
	c.weapon = nil
}

// HandleInput routes an input action to the attached weapon. Without a weapon it does nothing.
func (c *Character) HandleInput(k input.Kind) {
	if c.weapon == nil {
		return
	}
	input.Dispatch(c.weapon, k)
}
