package buffer

import "fmt"

// NodeID addresses a character node in a Document's arena.
type NodeID int32

// LineID addresses a line node in a Document's arena.
type LineID int32

// Absent links.
const (
	NoNode NodeID = -1
	NoLine LineID = -1
)

// Valid reports whether the ID refers to a node.
func (n NodeID) Valid() bool {
	return n >= 0
}

// Valid reports whether the ID refers to a line.
func (l LineID) Valid() bool {
	return l >= 0
}

// Point is a row/column address in a document.
// Both are 0-indexed; (-1, -1) means no position.
type Point struct {
	Row int
	Col int
}

// NoPoint is the unset position.
var NoPoint = Point{Row: -1, Col: -1}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Row, p.Col)
}

// IsSet returns true if the point addresses a position.
func (p Point) IsSet() bool {
	return p.Row >= 0 && p.Col >= 0
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Row < other.Row {
		return -1
	}
	if p.Row > other.Row {
		return 1
	}
	if p.Col < other.Col {
		return -1
	}
	if p.Col > other.Col {
		return 1
	}
	return 0
}
