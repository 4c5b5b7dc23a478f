package lua

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts Lua execution to safe operations.
type Sandbox struct {
	L   *lua.LState
	out io.Writer
}

// NewSandbox creates a new sandbox for the Lua state. print writes to out.
func NewSandbox(L *lua.LState, out io.Writer) *Sandbox {
	if out == nil {
		out = io.Discard
	}
	return &Sandbox{L: L, out: out}
}

// Install sets up the sandbox restrictions.
func (s *Sandbox) Install() {
	// Remove functions that load code from disk or strings
	dangerousFuncs := []string{
		"dofile",
		"loadfile",
		"load",
		"loadstring",
	}
	for _, name := range dangerousFuncs {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installSafePrint()
	s.installSafeRequire()
}

// installSafePrint replaces print with a version that writes to the
// sandbox output.
func (s *Sandbox) installSafePrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// installSafeRequire installs a require that only returns whitelisted
// modules that are already loaded as globals. Nothing is read from disk.
func (s *Sandbox) installSafeRequire() {
	safeModules := map[string]bool{
		"string": true,
		"table":  true,
		"math":   true,
		"buffer": true,
	}

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)
		if !safeModules[modName] {
			L.RaiseError("module %q is not available", modName)
			return 0
		}
		mod := L.GetGlobal(modName)
		if mod == lua.LNil {
			L.RaiseError("module %q is not loaded", modName)
			return 0
		}
		L.Push(mod)
		return 1
	}))
}
