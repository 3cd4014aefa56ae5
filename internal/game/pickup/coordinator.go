// Package pickup implements the one-shot weapon pickup protocol and the
// spawners that replace claimed pickups.
package pickup

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/event"
)

// Picker is an actor able to claim a weapon.
type Picker interface {
	ID() string
	HasWeapon() bool
}

// Actor is anything that can enter a pickup volume. Picker returns nil for
// actors that are not characters; the answer is fixed at construction.
type Actor interface {
	ID() string
	Picker() Picker
}

// Sensor is the overlap volume of one pickup. It starts registered.
type Sensor struct {
	registered bool
}

// NewSensor returns a registered Sensor.
func NewSensor() *Sensor {
	return &Sensor{registered: true}
}

// Registered reports whether overlaps are still delivered.
func (s *Sensor) Registered() bool { return s.registered }

// Deregister stops further overlaps. Idempotent.
func (s *Sensor) Deregister() { s.registered = false }

// Coordinator runs the pickup protocol for one pickup.
type Coordinator struct {
	pickupID string
	sensor   *Sensor
	spawners *Registry
	pub      event.Publisher
	handlers []func(Picker)
	logger   *zap.Logger
}

// NewCoordinator creates a Coordinator for pickupID.
//
// Precondition: sensor and pub must not be nil. spawners may be nil.
func NewCoordinator(pickupID string, sensor *Sensor, spawners *Registry, pub event.Publisher, logger *zap.Logger) *Coordinator {
	if sensor == nil || pub == nil {
		panic("pickup: NewCoordinator: sensor and publisher must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		pickupID: pickupID,
		sensor:   sensor,
		spawners: spawners,
		pub:      pub,
		logger:   logger.With(zap.String("pickup", pickupID)),
	}
}

// PickupID returns the pickup this coordinator guards.
func (c *Coordinator) PickupID() string { return c.pickupID }

// Sensor returns the coordinator's overlap sensor.
func (c *Coordinator) Sensor() *Sensor { return c.sensor }

// OnPickUp registers fn to run, alongside the picked-up notification, when a
// character claims the pickup.
func (c *Coordinator) OnPickUp(fn func(Picker)) {
	if fn != nil {
		c.handlers = append(c.handlers, fn)
	}
}

// OnOverlap is the sensor's overlap-began callback.
//
// Postcondition: returns true at most once per Coordinator, when candidate is
// a character without a weapon. In that case picked-up was published, the
// sensor is deregistered, and the first registered spawner (if any) was released.
func (c *Coordinator) OnOverlap(candidate Actor) bool {
	if candidate == nil || !c.sensor.Registered() {
		return false
	}
	p := candidate.Picker()
	if p == nil || p.HasWeapon() {
		return false
	}
	// Deregistered before fan-out: a handler may trigger another overlap.
	c.sensor.Deregister()

	c.pub.Publish(event.PickedUp{CharacterID: p.ID(), PickupID: c.pickupID})
	for _, fn := range c.handlers {
		fn(p)
	}
	c.logger.Debug("picked up", zap.String("character", p.ID()))

	if s := c.spawners.First(); s != nil {
		s.Release()
	}
	return true
}
