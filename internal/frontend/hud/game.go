package hud

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/gunfire/internal/game/arena"
	"github.com/cory-johannsen/gunfire/internal/game/geom"
	"github.com/cory-johannsen/gunfire/internal/game/input"
)

// ErrBusy is returned when the frame loop refuses new work.
var ErrBusy = errors.New("frame loop busy")

const (
	joinPending int32 = iota
	joinClaimed
	joinAbandoned
)

// Welcome is the first frame a client receives.
type Welcome struct {
	CharacterID  string  `json:"character_id"`
	Name         string  `json:"name"`
	ShotsPerRack int     `json:"shots_per_rack"`
	ShotsLeft    int     `json:"shots_left"`
	AmmoRacks    int     `json:"ammo_racks"`
	Health       float64 `json:"health"`
}

// Game is the arena as seen from a connection goroutine.
type Game interface {
	// Join creates a character for name and blocks until it exists.
	Join(ctx context.Context, name string) (Welcome, error)
	Leave(characterID string)
	Input(characterID string, k input.Kind)
	Aim(characterID string, position, forward geom.Vec3)
}

// Poster hands work to the frame thread.
type Poster interface {
	Post(fn func()) bool
}

// ArenaGame implements Game by posting every call to the frame loop that
// owns the arena.
type ArenaGame struct {
	arena  *arena.Arena
	loop   Poster
	spawns []geom.Vec3
	next   atomic.Uint64
	logger *zap.Logger
}

// NewArenaGame creates an ArenaGame. Joining characters cycle through spawns;
// an empty list spawns everyone at the origin.
//
// Precondition: a and loop must not be nil.
func NewArenaGame(a *arena.Arena, loop Poster, spawns []geom.Vec3, logger *zap.Logger) *ArenaGame {
	if a == nil || loop == nil {
		panic("hud: NewArenaGame: arena and loop must not be nil")
	}
	if len(spawns) == 0 {
		spawns = []geom.Vec3{{}}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArenaGame{arena: a, loop: loop, spawns: spawns, logger: logger}
}

// Join implements Game. When ctx ends before the frame thread runs the join,
// no character is created; when the join already ran, the character leaves.
func (g *ArenaGame) Join(ctx context.Context, name string) (Welcome, error) {
	at := g.spawns[int(g.next.Add(1)-1)%len(g.spawns)]
	res := make(chan Welcome, 1)
	var state atomic.Int32 // joinPending, joinClaimed or joinAbandoned
	if !g.loop.Post(func() {
		if !state.CompareAndSwap(joinPending, joinClaimed) {
			return
		}
		ch := g.arena.Join(name, at, geom.V(1, 0, 0))
		st := ch.CombatState()
		res <- Welcome{
			CharacterID:  ch.ID(),
			Name:         ch.Name(),
			ShotsPerRack: st.ShotsPerRack(),
			ShotsLeft:    st.ShotsLeft(),
			AmmoRacks:    st.AmmoRacks(),
			Health:       st.Health(),
		}
	}) {
		return Welcome{}, ErrBusy
	}
	select {
	case w := <-res:
		return w, nil
	case <-ctx.Done():
		if !state.CompareAndSwap(joinPending, joinAbandoned) {
			// The frame thread is inside the join; res is filled without blocking.
			g.Leave((<-res).CharacterID)
		}
		return Welcome{}, ctx.Err()
	}
}

// Leave implements Game.
func (g *ArenaGame) Leave(characterID string) {
	g.post(func() { g.arena.Leave(characterID) })
}

// Input implements Game.
func (g *ArenaGame) Input(characterID string, k input.Kind) {
	g.post(func() {
		if err := g.arena.Input(characterID, k); err != nil {
			g.logger.Debug("input for departed character", zap.String("character", characterID), zap.Error(err))
		}
	})
}

// Aim implements Game.
func (g *ArenaGame) Aim(characterID string, position, forward geom.Vec3) {
	g.post(func() {
		if err := g.arena.Aim(characterID, position, forward); err != nil {
			g.logger.Debug("aim for departed character", zap.String("character", characterID), zap.Error(err))
		}
	})
}

func (g *ArenaGame) post(fn func()) {
	if !g.loop.Post(fn) {
		g.logger.Warn("frame loop rejected command")
	}
}
