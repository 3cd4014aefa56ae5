package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gunfire/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_LoadWeapon_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadWeapon("rifle", dir, 0))
	assert.True(t, mgr.Loaded("rifle"))
	ret := mgr.CallHook("rifle", "test_hook", lua.LNumber(3), lua.LNumber(4))
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_LoadWeapon_EmptyID(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadWeapon("", t.TempDir(), 0))
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `not_a_function = 5`)
	require.NoError(t, mgr.LoadWeapon("rifle", dir, 0))

	for _, hook := range []string{"nonexistent_hook", "not_a_function"} {
		ret := mgr.CallHook("rifle", hook)
		assert.Equal(t, lua.LNil, ret)
	}
}

func TestManager_CallHook_UnknownWeapon_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := mgr.CallHook("no_such_weapon", "on_fire")
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.LoadWeapon("rifle", dir, 0))
	ret := mgr.CallHook("rifle", "bad_hook")
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_CallHook_BudgetIsPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function spin(n)
			local x = 0
			for i = 1, n do x = x + i end
			return x
		end
		function forever()
			while true do end
		end
	`)
	require.NoError(t, mgr.LoadWeapon("rifle", dir, 500))

	for range 10 {
		ret := mgr.CallHook("rifle", "spin", lua.LNumber(20))
		assert.Equal(t, lua.LNumber(210), ret)
	}
	ret := mgr.CallHook("rifle", "forever")
	assert.Equal(t, lua.LNil, ret)

	ret = mgr.CallHook("rifle", "spin", lua.LNumber(3))
	assert.Equal(t, lua.LNumber(6), ret, "VM usable after a runaway hook")
}

func TestManager_LoadShared_CallHookFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "shared.lua", `
		function shared_hook()
			return 42
		end
	`)
	require.NoError(t, mgr.LoadShared(dir, 0))
	ret := mgr.CallHook("pistol", "shared_hook")
	assert.Equal(t, lua.LNumber(42), ret)
	assert.False(t, mgr.Loaded("pistol"))
}

func TestManager_LoadWeapon_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadWeapon("rifle", t.TempDir(), 0))
	ret := mgr.CallHook("rifle", "anything")
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_LoadWeapon_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadWeapon("rifle", dir, 0))
	assert.Error(t, mgr.LoadWeapon("rifle", filepath.Join(t.TempDir(), "missing"), 0))
	assert.False(t, mgr.Loaded("rifle"))
}

func TestManager_LoadWeapon_ReplacesVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadWeapon("rifle", writeTempLua(t, "a.lua", `function v() return 1 end`), 0))
	require.NoError(t, mgr.LoadWeapon("rifle", writeTempLua(t, "a.lua", `function v() return 2 end`), 0))
	ret := mgr.CallHook("rifle", "v")
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_LoadWeapons_SkipsMissingDirs(t *testing.T) {
	mgr, _ := newTestManager(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "rifle"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rifle", "hooks.lua"), []byte(`function on_fire() return 1 end`), 0644))

	n, err := mgr.LoadWeapons(root, map[string]string{"rifle": "rifle", "pistol": "pistol"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, mgr.Loaded("rifle"))
	assert.False(t, mgr.Loaded("pistol"))
}

func TestManager_LoadWeapon_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.LoadWeapon("ordered", dir, 0))
	ret := mgr.CallHook("ordered", "get_val")
	assert.Equal(t, lua.LNumber(10), ret)
}

func TestManager_CallHookConcurrentSameWeapon_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function concurrent_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadWeapon("rifle", dir, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range callsEach {
				ret := mgr.CallHook("rifle", "concurrent_hook", lua.LNumber(1), lua.LNumber(2))
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestManager_Close_ReleasesVMs(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadWeapon("rifle", writeTempLua(t, "init.lua", `function get_x() return 1 end`), 0))
	mgr.Close()
	ret := mgr.CallHook("rifle", "get_x")
	assert.Equal(t, lua.LNil, ret)
}

func TestProperty_CallHookMissingWeaponNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		weaponID := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "weapon")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		ret := mgr.CallHook(weaponID, hook)
		if ret != lua.LNil {
			rt.Fatalf("CallHook(%q, %q) = %v", weaponID, hook, ret)
		}
	})
}
