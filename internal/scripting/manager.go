package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// sharedKey is the reserved key for scripts loaded via LoadShared. CallHook
// falls back to this VM when a weapon has no VM of its own.
const sharedKey = "__shared__"

type vm struct {
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per weapon and dispatches hooks to it.
//
// Manager is safe for concurrent CallHook after all loads complete. Calls to
// the same VM are serialized.
type Manager struct {
	mu     sync.Mutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{vms: make(map[string]*vm), logger: logger}
}

// LoadWeapon creates a sandboxed VM for weaponID, registers the engine.*
// modules, then executes every *.lua file in scriptDir in lexicographic order.
// A VM already loaded for weaponID is replaced.
//
// Precondition: weaponID must be non-empty; scriptDir must be a readable directory.
func (m *Manager) LoadWeapon(weaponID, scriptDir string, instLimit int) error {
	if weaponID == "" {
		return errors.New("scripting: weapon id must not be empty")
	}
	return m.loadInto(weaponID, scriptDir, instLimit)
}

// LoadShared creates the fallback VM used by weapons without their own scripts.
func (m *Manager) LoadShared(scriptDir string, instLimit int) error {
	return m.loadInto(sharedKey, scriptDir, instLimit)
}

// LoadWeapons loads root/<script> for every weaponID -> script entry. Missing
// directories are skipped.
//
// Postcondition: returns the number of VMs loaded.
func (m *Manager) LoadWeapons(root string, scripts map[string]string, instLimit int) (int, error) {
	ids := make([]string, 0, len(scripts))
	for id := range scripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	loaded := 0
	for _, id := range ids {
		dir := filepath.Join(root, scripts[id])
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("no scripts for weapon", zap.String("weapon", id), zap.String("dir", dir))
			continue
		}
		if err := m.LoadWeapon(id, dir, instLimit); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	limit := normalizeLimit(instLimit)
	L, cancel := NewSandboxedState(limit)
	defer cancel()
	m.RegisterModules(L, key)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.L.Close()
	}
	m.vms[key] = &vm{L: L, limit: limit}
	m.mu.Unlock()
	m.logger.Info("scripts loaded", zap.String("key", key), zap.Int("files", len(luaFiles)))
	return nil
}

// Loaded reports whether weaponID has its own VM.
func (m *Manager) Loaded(weaponID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.vms[weaponID]
	return ok
}

// CallHook calls the named Lua global function in weaponID's VM, falling back
// to the shared VM. Returns LNil if the hook is not defined or no VM
// exists. Each call gets a fresh instruction budget. Lua runtime errors are
// logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(weaponID, hook string, args ...lua.LValue) lua.LValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.vms[weaponID]
	if !ok {
		v = m.vms[sharedKey]
	}
	if v == nil {
		return lua.LNil
	}

	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}

	cancel := budget(v.L, v.limit)
	defer cancel()
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("weapon", weaponID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.L.Close()
		delete(m.vms, key)
	}
}
