package lua

import (
	"strings"

	"github.com/dshills/linkedit/internal/engine"
	lua "github.com/yuin/gopher-lua"
)

// Editor is the buffer surface exposed to scripts. *engine.Engine
// implements it.
type Editor interface {
	Goto(row, col int)
	Forward()
	Back()
	Home()
	End()
	Insert(s string)
	Delete(n int) error
	Undo() error
	Redo() error
	Lines() []string
	CountCharacters() int
	CountLines() int
	Point() engine.Point
	RenderString() string
}

var _ Editor = (*engine.Engine)(nil)

// OpenBuffer registers the "buffer" module bound to ed.
func OpenBuffer(s *State, ed Editor) {
	b := s.bridge
	gotoFn := func(L *lua.LState) int {
		ed.Goto(L.CheckInt(1), L.CheckInt(2))
		return 0
	}
	// goto is a keyword in recent gopher-lua, so go_to is the dotted form.
	s.RegisterModule("buffer", map[string]lua.LGFunction{
		"goto":  gotoFn,
		"go_to": gotoFn,
		"forward": func(L *lua.LState) int {
			ed.Forward()
			return 0
		},
		"back": func(L *lua.LState) int {
			ed.Back()
			return 0
		},
		"home": func(L *lua.LState) int {
			ed.Home()
			return 0
		},
		"end": func(L *lua.LState) int {
			ed.End()
			return 0
		},
		"insert": func(L *lua.LState) int {
			ed.Insert(L.CheckString(1))
			return 0
		},
		"delete": func(L *lua.LState) int {
			return pushResult(L, ed.Delete(L.CheckInt(1)))
		},
		"undo": func(L *lua.LState) int {
			return pushResult(L, ed.Undo())
		},
		"redo": func(L *lua.LState) int {
			return pushResult(L, ed.Redo())
		},
		"lines": func(L *lua.LState) int {
			L.Push(b.ToLuaValue(ed.Lines()))
			return 1
		},
		"text": func(L *lua.LState) int {
			L.Push(lua.LString(strings.Join(ed.Lines(), "\n")))
			return 1
		},
		"count_chars": func(L *lua.LState) int {
			L.Push(lua.LNumber(ed.CountCharacters()))
			return 1
		},
		"count_lines": func(L *lua.LState) int {
			L.Push(lua.LNumber(ed.CountLines()))
			return 1
		},
		"cursor": func(L *lua.LState) int {
			p := ed.Point()
			L.Push(lua.LNumber(p.Row))
			L.Push(lua.LNumber(p.Col))
			return 2
		},
		"render": func(L *lua.LState) int {
			L.Push(lua.LString(ed.RenderString()))
			return 1
		},
	})
}

// pushResult follows the Lua convention: true on success, nil plus a
// message on failure.
func pushResult(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}
