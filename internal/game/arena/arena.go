package arena

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/config"
	"github.com/cory-johannsen/gunfire/internal/game/character"
	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/input"
	"github.com/cory-johannsen/gunfire/internal/game/pickup"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
	"github.com/cory-johannsen/gunfire/internal/game/weapon"
)

var (
	// ErrUnknownCharacter is returned for an ID that names no character in the arena.
	ErrUnknownCharacter = errors.New("unknown character")
	// ErrUnknownPickup is returned for an ID that names no live pickup.
	ErrUnknownPickup = errors.New("unknown pickup")
)

// Body sizes in world units.
const (
	CharacterRadius = 40.0
	CharacterMass   = 80.0
	PickupRadius    = 30.0
)

// TuningFromConfig converts the combat section into controller tuning.
func TuningFromConfig(c config.CombatConfig) combat.Tuning {
	return combat.Tuning{
		ReloadDelay:       c.ReloadDelay,
		AutoFirePeriod:    c.AutoFirePeriod,
		MaxRange:          c.MaxRange,
		MuzzleOffset:      c.MuzzleOffset,
		ToggleCancelsAuto: c.ModeToggleCancelsAuto,
	}
}

// ResolverFromConfig converts the combat section into hit-resolution tuning.
func ResolverFromConfig(c config.CombatConfig) combat.ResolverConfig {
	return combat.ResolverConfig{Impulse: c.Impulse, Damage: c.Damage, TracePersist: c.TracePersist}
}

// PropConfig describes a non-character body.
type PropConfig struct {
	Name        string
	Position    geom.Vec3
	Radius      float64
	Mass        float64
	Simulated   bool
	PassThrough bool
}

// PickupInfo describes a live pickup.
type PickupInfo struct {
	ID        string
	WeaponID  string
	SpawnerID string
	Position  geom.Vec3
}

type livePickup struct {
	info  PickupInfo
	coord *pickup.Coordinator
}

// Arena wires characters, props, weapons and pickups together. Every method
// must run on the frame thread that advances the arena's Clock.
type Arena struct {
	cfg      config.CombatConfig
	clock    *sched.Clock
	pub      event.Publisher
	world    *World
	factory  *weapon.Factory
	spawners *pickup.Registry
	logger   *zap.Logger

	characters map[string]*character.Character
	pickups    map[string]*livePickup
	wspawners  map[string]*pickup.WeaponSpawner
	order      []string
	lastTick   time.Duration
}

// New creates an empty arena. Every weapon granted in the arena reports its
// shots to observers.
//
// Precondition: weapons, clock and pub must not be nil; cfg must be valid.
func New(cfg config.CombatConfig, weapons *weapon.Registry, clock *sched.Clock, pub event.Publisher, logger *zap.Logger, observers ...combat.ShotObserver) *Arena {
	if weapons == nil || clock == nil || pub == nil {
		panic("arena: New: weapons, clock and publisher must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	world := NewWorld()
	defaults := weapon.Defaults{Tuning: TuningFromConfig(cfg), Resolver: ResolverFromConfig(cfg)}
	sink := combat.LogTraceSink{Logger: logger.Named("trace")}
	return &Arena{
		cfg:        cfg,
		clock:      clock,
		pub:        pub,
		world:      world,
		factory:    weapon.NewFactory(weapons, defaults, world, sink, clock, pub, logger, observers...),
		spawners:   pickup.NewRegistry(),
		logger:     logger,
		characters: make(map[string]*character.Character),
		pickups:    make(map[string]*livePickup),
		wspawners:  make(map[string]*pickup.WeaponSpawner),
	}
}

// World returns the arena's body set.
func (a *Arena) World() *World { return a.world }

// Clock returns the arena's timer set.
func (a *Arena) Clock() *sched.Clock { return a.clock }

// Join creates a possessed character at position facing forward.
//
// Postcondition: the character is in the world and its spawn health was published.
func (a *Arena) Join(name string, position, forward geom.Vec3) *character.Character {
	id := uuid.New().String()
	body := a.world.Add(id, nil, position, CharacterRadius, CharacterMass, false, false)
	ch := character.New(name, character.Options{
		ID:           id,
		ShotsPerRack: a.cfg.ShotsPerRack,
		AmmoRacks:    a.cfg.AmmoRacks,
		Health:       a.cfg.Health,
		Transform:    combat.Transform{Position: position, Forward: forward.Normalize()},
		Body:         body,
	}, a.pub, a.logger)
	body.owner = ch
	ch.Possess(uuid.New().String())
	a.characters[id] = ch
	ch.Spawn()
	a.logger.Info("character joined", zap.String("character", id), zap.String("name", name))
	return ch
}

// Leave removes a character and detaches its weapon.
func (a *Arena) Leave(id string) {
	ch, ok := a.characters[id]
	if !ok {
		return
	}
	ch.DetachWeapon()
	ch.Possess("")
	a.world.Remove(id)
	delete(a.characters, id)
	a.logger.Info("character left", zap.String("character", id))
}

// Character returns the character with id.
func (a *Arena) Character(id string) (*character.Character, error) {
	ch, ok := a.characters[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownCharacter)
	}
	return ch, nil
}

// Characters returns every character sorted by ID.
func (a *Arena) Characters() []*character.Character {
	out := make([]*character.Character, 0, len(a.characters))
	for _, ch := range a.characters {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// AddProp places a non-character body.
func (a *Arena) AddProp(cfg PropConfig) *Prop {
	p := &Prop{name: cfg.Name}
	p.body = a.world.Add(uuid.New().String(), p, cfg.Position, cfg.Radius, cfg.Mass, cfg.Simulated, cfg.PassThrough)
	return p
}

// AddSpawner registers a weapon spawner and fills it. A zero RespawnDelay
// takes combat.pickup_respawn_delay; a negative one disables replacement.
//
// Precondition: cfg.ID is unique among the arena's spawners (panics otherwise).
func (a *Arena) AddSpawner(cfg pickup.SpawnerConfig) *pickup.WeaponSpawner {
	if _, dup := a.wspawners[cfg.ID]; dup {
		panic(fmt.Sprintf("arena: AddSpawner: duplicate spawner %q", cfg.ID))
	}
	if cfg.RespawnDelay == 0 {
		cfg.RespawnDelay = a.cfg.PickupRespawnDelay
	}
	s := pickup.NewWeaponSpawner(cfg, a.clock, a, a.logger)
	a.spawners.Register(s)
	a.wspawners[cfg.ID] = s
	a.order = append(a.order, cfg.ID)
	s.Populate()
	return s
}

// PlacePickup implements pickup.Placer. A claimed pickup releases the spawner
// named by spawnerID; pickups placed under any other name release the first
// registered spawner.
func (a *Arena) PlacePickup(spawnerID, weaponID string, at geom.Vec3) string {
	id := uuid.New().String()
	owners := a.spawners
	if s, ok := a.wspawners[spawnerID]; ok {
		owners = pickup.NewRegistry()
		owners.Register(s)
	}
	coord := pickup.NewCoordinator(id, pickup.NewSensor(), owners, a.pub, a.logger)
	coord.OnPickUp(func(p pickup.Picker) {
		a.grant(p.ID(), weaponID)
		delete(a.pickups, id)
	})
	a.pickups[id] = &livePickup{
		info:  PickupInfo{ID: id, WeaponID: weaponID, SpawnerID: spawnerID, Position: at},
		coord: coord,
	}
	return id
}

// Pickups returns the live pickups sorted by ID.
func (a *Arena) Pickups() []PickupInfo {
	out := make([]PickupInfo, 0, len(a.pickups))
	for _, p := range a.pickups {
		out = append(out, p.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Overlap delivers an overlap-began callback from pickupID's sensor for characterID.
func (a *Arena) Overlap(characterID, pickupID string) (bool, error) {
	ch, err := a.Character(characterID)
	if err != nil {
		return false, err
	}
	p, ok := a.pickups[pickupID]
	if !ok {
		return false, fmt.Errorf("%q: %w", pickupID, ErrUnknownPickup)
	}
	return p.coord.OnOverlap(ch), nil
}

// Input routes an input action to a character.
func (a *Arena) Input(characterID string, k input.Kind) error {
	ch, err := a.Character(characterID)
	if err != nil {
		return err
	}
	ch.HandleInput(k)
	return nil
}

// Aim moves a character and points it along forward.
func (a *Arena) Aim(characterID string, position, forward geom.Vec3) error {
	ch, err := a.Character(characterID)
	if err != nil {
		return err
	}
	ch.SetTransform(combat.Transform{Position: position, Forward: forward.Normalize()})
	a.world.Move(characterID, position)
	return nil
}

// Tick is the frame hook: it integrates physics since the previous tick and
// delivers overlaps between characters and pickups.
func (a *Arena) Tick(now time.Duration) {
	a.world.Step(now - a.lastTick)
	a.lastTick = now
	for _, p := range a.Pickups() {
		for _, ch := range a.Characters() {
			if ch.Transform().Position.Sub(p.Position).Len() > CharacterRadius+PickupRadius {
				continue
			}
			if lp, ok := a.pickups[p.ID]; ok && lp.coord.OnOverlap(ch) {
				break
			}
		}
	}
}

// Close cancels pending pickup replacements and detaches every weapon.
func (a *Arena) Close() {
	for _, id := range a.order {
		a.wspawners[id].Stop()
	}
	for _, ch := range a.characters {
		ch.DetachWeapon()
	}
}

func (a *Arena) grant(characterID, weaponID string) {
	ch, ok := a.characters[characterID]
	if !ok {
		return
	}
	ctrl, slot, err := a.factory.Build(weaponID)
	if err != nil {
		a.logger.Warn("pickup names unknown weapon", zap.String("weapon", weaponID), zap.Error(err))
		return
	}
	ch.AttachWeapon(ctrl, slot)
}
