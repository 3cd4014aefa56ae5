package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
)

// Hook names called by ShotHooks.
const (
	HookOnFire = "on_fire"
	HookOnHit  = "on_hit"
)

// ShotHooks forwards shots to the firing weapon's scripts:
//
//	on_fire(character_id, shots_left)                  after every shot
//	on_hit(character_id, classification, target_name)  when the shot touched something
//
// Return values are ignored.
type ShotHooks struct {
	mgr *Manager
}

// NewShotHooks returns a combat.ShotObserver backed by mgr.
func NewShotHooks(mgr *Manager) *ShotHooks {
	return &ShotHooks{mgr: mgr}
}

// OnShot implements combat.ShotObserver.
func (h *ShotHooks) OnShot(s combat.Shot) {
	h.mgr.CallHook(s.WeaponID, HookOnFire, lua.LString(s.CharacterID), lua.LNumber(s.ShotsLeft))
	if s.Outcome.Classification == combat.NoHit {
		return
	}
	h.mgr.CallHook(s.WeaponID, HookOnHit,
		lua.LString(s.CharacterID),
		lua.LString(s.Outcome.Classification.String()),
		lua.LString(s.Outcome.TargetName()),
	)
}
