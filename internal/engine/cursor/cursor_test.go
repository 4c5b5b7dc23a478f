package cursor

import (
	"testing"

	"github.com/dshills/linkedit/internal/engine/buffer"
)

// Cursor Tests

func TestUnset(t *testing.T) {
	c := Unset()
	if c.IsSet() {
		t.Error("unset cursor should not be set")
	}
	if c.HasLine() || c.HasNode() {
		t.Error("unset cursor should hold no references")
	}
	if c.Point() != buffer.NoPoint {
		t.Errorf("Point() = %v, want %v", c.Point(), buffer.NoPoint)
	}
}

func TestAt(t *testing.T) {
	c := At(2, 3, buffer.LineID(1), buffer.NodeID(7))
	if !c.IsSet() {
		t.Error("cursor should be set")
	}
	if c.Point() != (buffer.Point{Row: 2, Col: 3}) {
		t.Errorf("Point() = %v", c.Point())
	}
	if c.String() != "Cursor(2:3)" {
		t.Errorf("String() = %q", c.String())
	}
}

func TestResolve(t *testing.T) {
	doc := buffer.FromLines([]string{"ab", "cd"})
	line := doc.LineAt(1)
	node := doc.NodeAt(line, 1)

	tests := []struct {
		name    string
		cursor  Cursor
		wantErr bool
	}{
		{"consistent", At(1, 1, line, node), false},
		{"unset", Unset(), false},
		{"wrong line", At(0, 1, line, node), true},
		{"wrong node", At(1, 0, line, node), true},
		{"unset with refs", Cursor{Row: -1, Col: -1, Line: line, Node: buffer.NoNode}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cursor.Resolve(doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveAgainstClone(t *testing.T) {
	doc := buffer.FromLines([]string{"hello"})
	line := doc.Head()
	c := At(0, 4, line, doc.NodeAt(line, 4))

	if err := c.Resolve(doc.Clone()); err != nil {
		t.Errorf("cursor should resolve against a clone: %v", err)
	}
}
