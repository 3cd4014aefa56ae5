package weapon

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
)

var (
	// ErrUnknownWeapon is returned when an ID is not registered.
	ErrUnknownWeapon = errors.New("unknown weapon")
	// ErrDuplicateWeapon is returned when an ID is registered twice.
	ErrDuplicateWeapon = errors.New("duplicate weapon")
)

// Registry holds loaded weapon definitions indexed by ID.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds d to the registry.
//
// Precondition: d must not be nil and must be valid.
// Postcondition: Get(d.ID) returns d; returns ErrDuplicateWeapon if d.ID is already registered.
func (r *Registry) Register(d *Definition) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("weapon: Registry.Register: %w", err)
	}
	if _, exists := r.defs[d.ID]; exists {
		return fmt.Errorf("weapon: Registry.Register: %q: %w", d.ID, ErrDuplicateWeapon)
	}
	r.defs[d.ID] = d
	return nil
}

// Get returns the Definition for id.
//
// Postcondition: returns ErrUnknownWeapon when id is not registered.
func (r *Registry) Get(id string) (*Definition, error) {
	d, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("weapon %q: %w", id, ErrUnknownWeapon)
	}
	return d, nil
}

// All returns every Definition sorted by ID.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered weapons.
func (r *Registry) Len() int { return len(r.defs) }

// Defaults are the server-wide values a Definition overlays.
type Defaults struct {
	Tuning   combat.Tuning
	Resolver combat.ResolverConfig
}

// Factory builds detached combat controllers from registered definitions.
type Factory struct {
	reg       *Registry
	defaults  Defaults
	caster    combat.RayCaster
	sink      combat.TraceSink
	scheduler sched.Scheduler
	pub       event.Publisher
	observers []combat.ShotObserver
	logger    *zap.Logger
}

// NewFactory creates a Factory. Every controller it builds reports its shots to observers.
//
// Precondition: reg, caster, scheduler and pub must not be nil.
func NewFactory(reg *Registry, defaults Defaults, caster combat.RayCaster, sink combat.TraceSink, scheduler sched.Scheduler, pub event.Publisher, logger *zap.Logger, observers ...combat.ShotObserver) *Factory {
	if reg == nil || caster == nil || scheduler == nil || pub == nil {
		panic("weapon: NewFactory: registry, caster, scheduler and publisher must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		reg:       reg,
		defaults:  defaults,
		caster:    caster,
		sink:      sink,
		scheduler: scheduler,
		pub:       pub,
		observers: observers,
		logger:    logger,
	}
}

// Build returns a detached controller for weapon id and the slot it mounts on.
//
// Postcondition: returns ErrUnknownWeapon when id is not registered.
func (f *Factory) Build(id string) (*combat.Controller, string, error) {
	d, err := f.reg.Get(id)
	if err != nil {
		return nil, "", err
	}
	resolver := combat.NewResolver(f.caster, d.ResolverConfig(f.defaults.Resolver), f.sink, f.logger)
	ctrl := combat.NewController(d.ID, d.Tuning(f.defaults.Tuning), d.CombatCues(), d.Modes(), f.scheduler, resolver, f.pub, f.logger)
	for _, o := range f.observers {
		ctrl.AddShotObserver(o)
	}
	return ctrl, d.AttachSlot(), nil
}
