package combat

import "fmt"

// FiringMode selects how the fire input drives a weapon.
type FiringMode string

const (
	// FiringModeSingle fires one shot per press.
	FiringModeSingle FiringMode = "single"
	// FiringModeAuto fires on a repeating timer while the trigger is held.
	FiringModeAuto FiringMode = "auto"
)

// Toggle returns the other mode.
func (m FiringMode) Toggle() FiringMode {
	if m == FiringModeAuto {
		return FiringModeSingle
	}
	return FiringModeAuto
}

// Valid reports whether m is a known mode.
func (m FiringMode) Valid() bool {
	return m == FiringModeSingle || m == FiringModeAuto
}

// ParseFiringMode converts a configuration string to a FiringMode.
//
// Postcondition: returns an error for anything other than "single" or "auto".
func ParseFiringMode(s string) (FiringMode, error) {
	m := FiringMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("combat: unknown firing mode %q", s)
	}
	return m, nil
}
