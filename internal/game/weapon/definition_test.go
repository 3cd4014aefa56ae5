package weapon_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gunfire/internal/game/combat"
	"github.com/cory-johannsen/gunfire/internal/game/event"
	"github.com/cory-johannsen/gunfire/internal/game/sched"
	"github.com/cory-johannsen/gunfire/internal/game/weapon"
)

const rifleYAML = `
id: rifle
name: Assault Rifle
reload_delay: 1500ms
auto_fire_period: 250ms
max_range: 800
muzzle_offset: 7
damage: 0.2
firing_modes: [auto, single]
cues:
  fire: rifle_fire
  empty: dry_click
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rifle.yaml", rifleYAML)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	defs, err := weapon.LoadDefinitions(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	d := defs[0]
	assert.Equal(t, "rifle", d.ID)
	assert.Equal(t, weapon.DefaultSlot, d.AttachSlot())
	assert.Equal(t, "rifle", d.ScriptName())
	assert.Equal(t, []combat.FiringMode{combat.FiringModeAuto, combat.FiringModeSingle}, d.Modes())
	assert.Equal(t, combat.Cues{Fire: "rifle_fire", Empty: "dry_click"}, d.CombatCues())
}

func TestLoadDefinitions_Errors(t *testing.T) {
	_, err := weapon.LoadDefinitions(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "id: [")
	_, err = weapon.LoadDefinitions(dir)
	assert.ErrorContains(t, err, "cannot parse")

	dir = t.TempDir()
	writeFile(t, dir, "bad.yaml", "id: x\nname: X\nfiring_modes: [burst]\n")
	_, err = weapon.LoadDefinitions(dir)
	assert.ErrorContains(t, err, "invalid weapon")
}

func TestLoadDefinitions_ShippedContent(t *testing.T) {
	defs, err := weapon.LoadDefinitions(filepath.Join("..", "..", "..", "content", "weapons"))
	require.NoError(t, err)
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "rifle")
}

func TestDefinition_ValidateCollectsAll(t *testing.T) {
	d := &weapon.Definition{
		ReloadDelay:  "soon",
		MuzzleOffset: 30,
		Damage:       -1,
		FiringModes:  []string{"single", "single"},
	}
	err := d.Validate()
	require.Error(t, err)
	for _, want := range []string{"id must not be empty", "name must not be empty", "reload_delay", "muzzle_offset", "damage", "listed twice"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestDefinition_TuningOverlaysDefaults(t *testing.T) {
	d := &weapon.Definition{ID: "rifle", Name: "Rifle", ReloadDelay: "1500ms", MaxRange: 800}
	require.NoError(t, d.Validate())

	base := combat.DefaultTuning()
	base.ToggleCancelsAuto = true
	got := d.Tuning(base)
	assert.Equal(t, 1500*time.Millisecond, got.ReloadDelay)
	assert.Equal(t, 500*time.Millisecond, got.AutoFirePeriod)
	assert.Equal(t, 800.0, got.MaxRange)
	assert.Equal(t, base.MuzzleOffset, got.MuzzleOffset)
	assert.True(t, got.ToggleCancelsAuto)

	rc := d.ResolverConfig(combat.DefaultResolverConfig())
	assert.Equal(t, combat.DefaultResolverConfig(), rc)
	assert.Equal(t, []combat.FiringMode{combat.FiringModeSingle}, d.Modes())
}

func TestRegistry(t *testing.T) {
	r := weapon.NewRegistry()
	d := &weapon.Definition{ID: "rifle", Name: "Rifle"}
	require.NoError(t, r.Register(d))
	assert.ErrorIs(t, r.Register(d), weapon.ErrDuplicateWeapon)
	assert.Error(t, r.Register(&weapon.Definition{ID: "nameless"}))
	require.NoError(t, r.Register(&weapon.Definition{ID: "pistol", Name: "Pistol"}))

	got, err := r.Get("rifle")
	require.NoError(t, err)
	assert.Same(t, d, got)
	_, err = r.Get("bazooka")
	assert.ErrorIs(t, err, weapon.ErrUnknownWeapon)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "pistol", all[0].ID)
	assert.Equal(t, 2, r.Len())
}

type nothing struct{}

func (nothing) RayCast(combat.Query) combat.Hit { return combat.Hit{} }

func TestFactory_BuildsConfiguredController(t *testing.T) {
	r := weapon.NewRegistry()
	require.NoError(t, r.Register(&weapon.Definition{
		ID: "pistol", Name: "Pistol", Slot: "HipPoint", ReloadDelay: "800ms", FiringModes: []string{"single"},
	}))
	f := weapon.NewFactory(r, weapon.Defaults{Tuning: combat.DefaultTuning(), Resolver: combat.DefaultResolverConfig()},
		nothing{}, nil, sched.NewClock(), &event.Recorder{}, nil)

	ctrl, slot, err := f.Build("pistol")
	require.NoError(t, err)
	assert.Equal(t, "HipPoint", slot)
	assert.Equal(t, "pistol", ctrl.WeaponID())
	assert.Equal(t, 800*time.Millisecond, ctrl.Tuning().ReloadDelay)
	assert.Equal(t, combat.FiringModeSingle, ctrl.Mode())

	_, _, err = f.Build("bazooka")
	assert.ErrorIs(t, err, weapon.ErrUnknownWeapon)
}
