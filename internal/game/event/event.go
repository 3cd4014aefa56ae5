// Package event defines the notifications the combat core emits for the
// presentation layer and the observer Bus that delivers them.
package event

import "github.com/cory-johannsen/gunfire/internal/game/geom"

// Kind identifies a notification type.
type Kind int

const (
	KindAmmoChanged Kind = iota
	KindHealthChanged
	KindPickedUp
	KindWeaponAttached
	KindCue
	KindShotResolved
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAmmoChanged:
		return "ammo_changed"
	case KindHealthChanged:
		return "health_changed"
	case KindPickedUp:
		return "picked_up"
	case KindWeaponAttached:
		return "weapon_attached"
	case KindCue:
		return "cue"
	case KindShotResolved:
		return "shot_resolved"
	default:
		return "unknown"
	}
}

// Event is a notification about one character.
type Event interface {
	Kind() Kind
	// Subject is the ID of the character the event concerns.
	Subject() string
}

// AmmoChanged reports the ammunition counters after any change.
type AmmoChanged struct {
	CharacterID  string `json:"character_id"`
	ShotsPerRack int    `json:"shots_per_rack"`
	ShotsLeft    int    `json:"shots_left"`
	AmmoRacks    int    `json:"ammo_racks"`
	Mode         string `json:"mode"`
}

func (AmmoChanged) Kind() Kind        { return KindAmmoChanged }
func (e AmmoChanged) Subject() string { return e.CharacterID }

// HealthChanged reports a character's health after damage or at spawn.
type HealthChanged struct {
	CharacterID string  `json:"character_id"`
	Health      float64 `json:"health"`
}

func (HealthChanged) Kind() Kind        { return KindHealthChanged }
func (e HealthChanged) Subject() string { return e.CharacterID }

// PickedUp reports that a character claimed a weapon pickup.
type PickedUp struct {
	CharacterID string `json:"character_id"`
	PickupID    string `json:"pickup_id"`
}

func (PickedUp) Kind() Kind        { return KindPickedUp }
func (e PickedUp) Subject() string { return e.CharacterID }

// WeaponAttached reports that a weapon was mounted on a character.
type WeaponAttached struct {
	CharacterID string `json:"character_id"`
	WeaponID    string `json:"weapon_id"`
	Slot        string `json:"slot"`
}

func (WeaponAttached) Kind() Kind        { return KindWeaponAttached }
func (e WeaponAttached) Subject() string { return e.CharacterID }

// CueKind names a sound or animation cue.
type CueKind string

const (
	CueFire          CueKind = "fire"
	CueEmpty         CueKind = "empty"
	CueReload        CueKind = "reload"
	CueFireAnimation CueKind = "fire_animation"
)

// Cue asks the presentation layer to play an asset at the character.
type Cue struct {
	CharacterID string  `json:"character_id"`
	Cue         CueKind `json:"cue"`
	Asset       string  `json:"asset"`
}

func (Cue) Kind() Kind        { return KindCue }
func (e Cue) Subject() string { return e.CharacterID }

// ShotResolved reports the classified result of one hit-scan shot.
type ShotResolved struct {
	CharacterID    string    `json:"character_id"`
	WeaponID       string    `json:"weapon_id"`
	Classification string    `json:"classification"`
	TargetID       string    `json:"target_id,omitempty"`
	Impact         geom.Vec3 `json:"impact"`
}

func (ShotResolved) Kind() Kind        { return KindShotResolved }
func (e ShotResolved) Subject() string { return e.CharacterID }
