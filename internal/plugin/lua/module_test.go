package lua

import (
	"context"
	"testing"

	"github.com/dshills/linkedit/internal/engine"
)

func newBufferState(t *testing.T, eng *engine.Engine) *State {
	t.Helper()
	s := NewState()
	t.Cleanup(func() { _ = s.Close() })
	OpenBuffer(s, eng)
	return s
}

func TestBufferEditing(t *testing.T) {
	eng := engine.New()
	s := newBufferState(t, eng)

	err := s.DoString(context.Background(), `
buffer.insert("hello")
buffer.home()
buffer.delete(1)
buffer.insert("J")
buffer.go_to(1, 2)
buffer.insert("x")
`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	lines := eng.Lines()
	if len(lines) != 2 || lines[0] != "eJllo" || lines[1] != "  x" {
		t.Errorf("Lines() = %q", lines)
	}
	if p := eng.Point(); p.Row != 1 || p.Col != 3 {
		t.Errorf("Point() = %v, want (1,3)", p)
	}
}

func TestBufferQueries(t *testing.T) {
	eng := engine.New(engine.WithLines("ab", "cde"))
	s := newBufferState(t, eng)

	got, err := s.Eval(context.Background(), `
buffer["end"]()
local row, col = buffer.cursor()
return buffer.count_chars(), buffer.count_lines(), row, col, buffer.text(), buffer.lines(), buffer.render()
`)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}

	want := []any{int64(5), int64(2), int64(0), int64(1), "ab\ncde"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("result %d = %#v, want %#v", i, got[i], w)
		}
	}
	lines, ok := got[5].([]any)
	if !ok || len(lines) != 2 || lines[1] != "cde" {
		t.Errorf("lines = %#v", got[5])
	}
	if got[6] != "ab|\ncde\n" {
		t.Errorf("render = %q", got[6])
	}
}

func TestBufferErrorsAsValues(t *testing.T) {
	eng := engine.New()
	s := newBufferState(t, eng)

	got, err := s.Eval(context.Background(), `
local ok1, err1 = buffer.undo()
local ok2, err2 = buffer.redo()
buffer.insert("a")
local ok3 = buffer.undo()
return ok1, err1, ok2, err2, ok3
`)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	want := []any{nil, "nothing to undo", nil, "nothing to redo", true}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("result %d = %#v, want %#v", i, got[i], w)
		}
	}
}

func TestBufferMovement(t *testing.T) {
	eng := engine.New(engine.WithLines("ab", "c"))
	s := newBufferState(t, eng)

	err := s.DoString(context.Background(), `
buffer.forward()
buffer.forward()
buffer.back()
buffer.back()
buffer.forward()
`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if p := eng.Point(); p.Row != 0 || p.Col != 1 {
		t.Errorf("Point() = %v, want (0,1)", p)
	}
}

func TestBufferTransactionUndo(t *testing.T) {
	eng := engine.New()
	s := newBufferState(t, eng)

	err := eng.Transaction("lua", func() error {
		return s.DoString(context.Background(), `
buffer.insert("a")
buffer.insert("b")
buffer.insert("c")
`)
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if eng.UndoCount() != 1 {
		t.Errorf("UndoCount() = %d, want 1", eng.UndoCount())
	}
	if err := eng.Undo(); err != nil {
		t.Fatal(err)
	}
	if !eng.IsEmpty() {
		t.Errorf("Lines() after undo = %q, want empty", eng.Lines())
	}
}

func TestBufferUndoInsideTransaction(t *testing.T) {
	eng := engine.New()
	s := newBufferState(t, eng)
	eng.Insert("base")

	err := eng.Transaction("lua", func() error {
		return s.DoString(context.Background(), `
buffer.insert("x")
buffer.undo()
buffer.insert("y")
`)
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if lines := eng.Lines(); len(lines) != 1 || lines[0] != "basey" {
		t.Fatalf("Lines() = %q, want [basey]", lines)
	}

	if err := eng.Undo(); err != nil {
		t.Fatal(err)
	}
	if lines := eng.Lines(); len(lines) != 1 || lines[0] != "base" {
		t.Errorf("Lines() after undo = %q, want [base]", lines)
	}
	if err := eng.Undo(); err != nil {
		t.Fatal(err)
	}
	if !eng.IsEmpty() {
		t.Errorf("Lines() after second undo = %q, want empty", eng.Lines())
	}
}

func TestBufferArgumentErrors(t *testing.T) {
	s := newBufferState(t, engine.New())

	if err := s.DoString(context.Background(), `buffer.go_to("x", 1)`); err == nil {
		t.Error("expected argument error")
	}
	if err := s.DoString(context.Background(), `local b = require("buffer"); b.insert("z")`); err != nil {
		t.Errorf("require(buffer) error = %v", err)
	}
}
