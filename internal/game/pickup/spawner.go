package pickup

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
)

// Spawner is signalled when a pickup it supplies has been claimed.
type Spawner interface {
	Release()
}

// Registry is the ordered set of spawners in a world, populated at world setup.
// A nil *Registry is empty.
type Registry struct {
	spawners []Spawner
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Register appends s.
func (r *Registry) Register(s Spawner) {
	r.spawners = append(r.spawners, s)
}

// First returns the earliest registered spawner, or nil when there is none.
func (r *Registry) First() Spawner {
	if r == nil || len(r.spawners) == 0 {
		return nil
	}
	return r.spawners[0]
}

// Len returns the number of registered spawners.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.spawners)
}

// Placer puts a weapon pickup into the world and returns its ID.
type Placer interface {
	PlacePickup(spawnerID, weaponID string, at geom.Vec3) string
}

// SpawnerConfig describes one weapon spawn point.
//
// Invariant: Max >= 1; RespawnDelay <= 0 means a claimed pickup is not replaced.
type SpawnerConfig struct {
	ID           string
	WeaponID     string
	Position     geom.Vec3
	Max          int
	RespawnDelay time.Duration
}

// WeaponSpawner keeps up to Max pickups of one weapon alive at a spawn point,
// replacing each claimed pickup after RespawnDelay.
//
// Invariant: pending replacements never exceed Max - live.
type WeaponSpawner struct {
	cfg     SpawnerConfig
	sched   sched.Scheduler
	placer  Placer
	logger  *zap.Logger
	live    int
	pending []sched.Handle
}

// NewWeaponSpawner creates a spawner with no live pickups.
//
// Precondition: s and placer must not be nil; cfg.Max < 1 is treated as 1.
func NewWeaponSpawner(cfg SpawnerConfig, s sched.Scheduler, placer Placer, logger *zap.Logger) *WeaponSpawner {
	if s == nil || placer == nil {
		panic("pickup: NewWeaponSpawner: scheduler and placer must not be nil")
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeaponSpawner{
		cfg:    cfg,
		sched:  s,
		placer: placer,
		logger: logger.With(zap.String("spawner", cfg.ID), zap.String("weapon", cfg.WeaponID)),
	}
}

// ID returns the spawner ID.
func (w *WeaponSpawner) ID() string { return w.cfg.ID }

// Live returns the number of unclaimed pickups from this spawner.
func (w *WeaponSpawner) Live() int { return w.live }

// Pending returns the number of scheduled replacements.
func (w *WeaponSpawner) Pending() int {
	n := 0
	for _, h := range w.pending {
		if w.sched.Active(h) {
			n++
		}
	}
	return n
}

// Populate places pickups until Live == Max.
func (w *WeaponSpawner) Populate() {
	for w.live < w.cfg.Max {
		w.place()
	}
}

// Release records that one of this spawner's pickups was claimed and
// schedules its replacement. No-op on the schedule when RespawnDelay <= 0.
func (w *WeaponSpawner) Release() {
	if w.live > 0 {
		w.live--
	}
	if w.cfg.RespawnDelay <= 0 || w.live+w.Pending() >= w.cfg.Max {
		return
	}
	w.pending = append(w.pending, w.sched.Schedule(w.cfg.RespawnDelay, false, w.respawn))
	w.logger.Debug("replacement scheduled", zap.Duration("delay", w.cfg.RespawnDelay))
}

// Stop cancels every pending replacement.
func (w *WeaponSpawner) Stop() {
	for _, h := range w.pending {
		w.sched.Cancel(h)
	}
	w.pending = nil
}

func (w *WeaponSpawner) respawn() {
	active := w.pending[:0]
	for _, h := range w.pending {
		if w.sched.Active(h) {
			active = append(active, h)
		}
	}
	w.pending = active
	if w.live >= w.cfg.Max {
		return
	}
	w.place()
}

func (w *WeaponSpawner) place() {
	id := w.placer.PlacePickup(w.cfg.ID, w.cfg.WeaponID, w.cfg.Position)
	w.live++
	w.logger.Debug("pickup placed", zap.String("pickup", id))
}
