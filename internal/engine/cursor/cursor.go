package cursor

import (
	"fmt"

	"github.com/dshills/linkedit/internal/engine/buffer"
)

// Point is an alias for buffer.Point for convenience.
type Point = buffer.Point

// Cursor is a position in a document plus references to the line and
// character at that position.
type Cursor struct {
	Row  int
	Col  int
	Line buffer.LineID
	Node buffer.NodeID
}

// Unset returns the cursor of an un-addressed document.
func Unset() Cursor {
	return Cursor{Row: -1, Col: -1, Line: buffer.NoLine, Node: buffer.NoNode}
}

// At returns a cursor at (row, col) referencing line and node.
func At(row, col int, line buffer.LineID, node buffer.NodeID) Cursor {
	return Cursor{Row: row, Col: col, Line: line, Node: node}
}

// IsSet returns true if the cursor addresses a position.
func (c Cursor) IsSet() bool {
	return c.Row != -1 && c.Col != -1
}

// Point returns the logical position of the cursor.
func (c Cursor) Point() Point {
	return Point{Row: c.Row, Col: c.Col}
}

// HasNode returns true if the cursor references a character.
func (c Cursor) HasNode() bool {
	return c.Node.Valid()
}

// HasLine returns true if the cursor references a line.
func (c Cursor) HasLine() bool {
	return c.Line.Valid()
}

// String returns a string representation of the cursor.
func (c Cursor) String() string {
	return fmt.Sprintf("Cursor(%d:%d)", c.Row, c.Col)
}

// Resolve checks the cursor references against doc by walking from the
// head. It returns an error describing the first mismatch.
func (c Cursor) Resolve(doc *buffer.Document) error {
	if !c.IsSet() {
		if c.Line.Valid() || c.Node.Valid() {
			return fmt.Errorf("unset cursor keeps references line=%d node=%d", c.Line, c.Node)
		}
		return nil
	}
	if l := doc.LineAt(c.Row); l != c.Line {
		return fmt.Errorf("row %d resolves to line %d, cursor holds %d", c.Row, l, c.Line)
	}
	if n := doc.NodeAt(c.Line, c.Col); n != c.Node {
		return fmt.Errorf("col %d resolves to node %d, cursor holds %d", c.Col, n, c.Node)
	}
	return nil
}
