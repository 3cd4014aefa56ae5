package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine global into L. Log lines written by the
// script carry key as the "script" field.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine.log.{debug,info,warn,error} are defined in L.
func (m *Manager) RegisterModules(L *lua.LState, key string) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L, key))
	L.SetGlobal("engine", engine)
}

func (m *Manager) newLogModule(L *lua.LState, key string) *lua.LTable {
	logger := m.logger.Named("lua").With(zap.String("script", key))
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	}
	for name, write := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			write(L.CheckString(1))
			return 0
		}))
	}
	return mod
}
