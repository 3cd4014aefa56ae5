// Package combat implements the hit-scan weapon core: per-character combat
// state, the firing controller state machine, and hit resolution.
package combat

import "fmt"

// Spawn defaults for a fresh character.
const (
	DefaultShotsPerRack = 8
	DefaultAmmoRacks    = 4
	DefaultHealth       = 1.0
)

// State holds one character's ammunition, health, and weapon flag.
// Ammo fields are mutated only by the character's Controller; health only
// through the character's damage entry point.
//
// Invariant: ShotsPerRack > 0; 0 <= ShotsLeft <= ShotsPerRack; AmmoRacks >= 0.
type State struct {
	shotsPerRack int
	shotsLeft    int
	ammoRacks    int
	health       float64
	hasWeapon    bool
}

// NewState returns a State with a full rack loaded.
//
// Precondition: shotsPerRack > 0 and ammoRacks >= 0 (panics otherwise).
// Postcondition: ShotsLeft == ShotsPerRack; HasWeapon is false.
func NewState(shotsPerRack, ammoRacks int, health float64) *State {
	if shotsPerRack <= 0 {
		panic(fmt.Sprintf("combat: NewState: shotsPerRack must be > 0, got %d", shotsPerRack))
	}
	if ammoRacks < 0 {
		panic(fmt.Sprintf("combat: NewState: ammoRacks must be >= 0, got %d", ammoRacks))
	}
	return &State{
		shotsPerRack: shotsPerRack,
		shotsLeft:    shotsPerRack,
		ammoRacks:    ammoRacks,
		health:       health,
	}
}

// DefaultState returns the spawn state: 8 shots per rack, 8 loaded, 4 racks, health 1.0.
func DefaultState() *State {
	return NewState(DefaultShotsPerRack, DefaultAmmoRacks, DefaultHealth)
}

func (s *State) ShotsPerRack() int { return s.shotsPerRack }
func (s *State) ShotsLeft() int    { return s.shotsLeft }
func (s *State) AmmoRacks() int    { return s.ammoRacks }
func (s *State) Health() float64   { return s.health }
func (s *State) HasWeapon() bool   { return s.hasWeapon }

// MarkArmed records that a weapon is attached.
func (s *State) MarkArmed() { s.hasWeapon = true }

// ConsumeShot removes one loaded round.
//
// Postcondition: returns false with no change when ShotsLeft == 0; otherwise ShotsLeft decreases by 1.
func (s *State) ConsumeShot() bool {
	if s.shotsLeft <= 0 {
		return false
	}
	s.shotsLeft--
	s.checkInvariants()
	return true
}

// CanReload reports whether Reload would succeed.
func (s *State) CanReload() bool {
	return s.ammoRacks > 0 && s.shotsLeft < s.shotsPerRack
}

// Reload swaps in a spare rack.
//
// Postcondition: returns false with no change when no rack is spare or the
// loaded rack is full; otherwise ShotsLeft == ShotsPerRack and AmmoRacks decreased by 1.
func (s *State) Reload() bool {
	if !s.CanReload() {
		return false
	}
	s.shotsLeft = s.shotsPerRack
	s.ammoRacks--
	s.checkInvariants()
	return true
}

// ApplyDamage subtracts amount from health. There is no lower clamp.
func (s *State) ApplyDamage(amount float64) {
	s.health -= amount
}

// Restore overwrites the replicated fields with values received from the
// authoritative side.
//
// Precondition: the values satisfy the State invariant (panics otherwise).
func (s *State) Restore(shotsLeft, ammoRacks int, health float64) {
	s.shotsLeft = shotsLeft
	s.ammoRacks = ammoRacks
	s.health = health
	s.checkInvariants()
}

// checkInvariants panics when the ammo counters leave their legal range. Every
// mutation is guarded, so reaching the panic is a programming error.
func (s *State) checkInvariants() {
	if s.shotsLeft < 0 || s.shotsLeft > s.shotsPerRack {
		panic(fmt.Sprintf("combat: State: shotsLeft %d outside [0, %d]", s.shotsLeft, s.shotsPerRack))
	}
	if s.ammoRacks < 0 {
		panic(fmt.Sprintf("combat: State: ammoRacks %d is negative", s.ammoRacks))
	}
}
