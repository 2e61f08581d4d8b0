package lua

import (
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// unsafeGlobals can load code from disk or from strings at runtime.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// openSafeLibraries opens only libraries without file, process or module
// access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// installSandbox removes unsafe globals and replaces print.
func installSandbox(L *lua.LState, logger *slog.Logger) {
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logger.Debug("lua print", "text", strings.Join(parts, "\t"))
		return 0
	}))
}
