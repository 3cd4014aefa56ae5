// Package weapon provides YAML weapon definitions and the registry that
// turns them into combat controllers.
package weapon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
)

// DefaultSlot is the attachment socket used when a definition names none.
const DefaultSlot = "GripPoint"

// CueDefs names the presentation assets of a weapon. Every entry is optional.
type CueDefs struct {
	Fire          string `yaml:"fire"`
	Empty         string `yaml:"empty"`
	Reload        string `yaml:"reload"`
	FireAnimation string `yaml:"fire_animation"`
}

// Definition is the static description of a weapon loaded from YAML. Zero
// numeric fields and empty durations fall back to the server's combat defaults.
type Definition struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	ReloadDelay    string   `yaml:"reload_delay"`
	AutoFirePeriod string   `yaml:"auto_fire_period"`
	MaxRange       float64  `yaml:"max_range"`
	MuzzleOffset   float64  `yaml:"muzzle_offset"`
	Damage         float64  `yaml:"damage"`
	Impulse        float64  `yaml:"impulse"`
	FiringModes    []string `yaml:"firing_modes"`
	Slot           string   `yaml:"slot"`
	Cues           CueDefs  `yaml:"cues"`
	// Script names the hook directory under the scripts root; defaults to ID.
	Script string `yaml:"script"`
}

// Validate checks that the Definition satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid; otherwise every violation is reported.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if err := checkDuration("reload_delay", d.ReloadDelay); err != nil {
		errs = append(errs, err)
	}
	if err := checkDuration("auto_fire_period", d.AutoFirePeriod); err != nil {
		errs = append(errs, err)
	}
	if d.MaxRange < 0 {
		errs = append(errs, errors.New("max_range must be >= 0"))
	}
	if d.MuzzleOffset != 0 && (d.MuzzleOffset < combat.MinMuzzleOffset || d.MuzzleOffset > combat.MaxMuzzleOffset) {
		errs = append(errs, fmt.Errorf("muzzle_offset must be within [%g, %g]", combat.MinMuzzleOffset, combat.MaxMuzzleOffset))
	}
	if d.Damage < 0 {
		errs = append(errs, errors.New("damage must be >= 0"))
	}
	if d.Impulse < 0 {
		errs = append(errs, errors.New("impulse must be >= 0"))
	}
	seen := make(map[string]bool, len(d.FiringModes))
	for _, m := range d.FiringModes {
		if _, err := combat.ParseFiringMode(m); err != nil {
			errs = append(errs, err)
		}
		if seen[m] {
			errs = append(errs, fmt.Errorf("firing mode %q listed twice", m))
		}
		seen[m] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

func checkDuration(field, v string) error {
	if v == "" {
		return nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if dur <= 0 {
		return fmt.Errorf("%s must be > 0", field)
	}
	return nil
}

// Modes returns the firing modes in declaration order. An empty list yields
// Single only.
//
// Precondition: Validate returned nil.
func (d *Definition) Modes() []combat.FiringMode {
	if len(d.FiringModes) == 0 {
		return []combat.FiringMode{combat.FiringModeSingle}
	}
	out := make([]combat.FiringMode, 0, len(d.FiringModes))
	for _, m := range d.FiringModes {
		out = append(out, combat.FiringMode(m))
	}
	return out
}

// AttachSlot returns the socket the weapon mounts on.
func (d *Definition) AttachSlot() string {
	if d.Slot == "" {
		return DefaultSlot
	}
	return d.Slot
}

// ScriptName returns the hook directory name for the weapon.
func (d *Definition) ScriptName() string {
	if d.Script == "" {
		return d.ID
	}
	return d.Script
}

// CombatCues converts the cue table.
func (d *Definition) CombatCues() combat.Cues {
	return combat.Cues{
		Fire:          d.Cues.Fire,
		Empty:         d.Cues.Empty,
		Reload:        d.Cues.Reload,
		FireAnimation: d.Cues.FireAnimation,
	}
}

// Tuning overlays the definition on base.
//
// Precondition: Validate returned nil.
func (d *Definition) Tuning(base combat.Tuning) combat.Tuning {
	t := base
	if d.ReloadDelay != "" {
		t.ReloadDelay, _ = time.ParseDuration(d.ReloadDelay)
	}
	if d.AutoFirePeriod != "" {
		t.AutoFirePeriod, _ = time.ParseDuration(d.AutoFirePeriod)
	}
	if d.MaxRange > 0 {
		t.MaxRange = d.MaxRange
	}
	if d.MuzzleOffset > 0 {
		t.MuzzleOffset = d.MuzzleOffset
	}
	return t
}

// ResolverConfig overlays the definition's damage and impulse on base.
func (d *Definition) ResolverConfig(base combat.ResolverConfig) combat.ResolverConfig {
	c := base
	if d.Damage > 0 {
		c.Damage = d.Damage
	}
	if d.Impulse > 0 {
		c.Impulse = d.Impulse
	}
	return c
}

// LoadDefinitions reads all *.yaml files from dir, parses each as a Definition,
// validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid Definitions or the first encountered error.
func LoadDefinitions(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadDefinitions: cannot read directory %q: %w", dir, err)
	}

	var defs []*Definition
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadDefinitions: cannot read file %q: %w", path, err)
		}
		var d Definition
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadDefinitions: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadDefinitions: invalid weapon in %q: %w", path, err)
		}
		defs = append(defs, &d)
	}
	return defs, nil
}
