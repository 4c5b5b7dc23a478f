package buffer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Errors returned by structural checks.
var (
	ErrBrokenLink  = errors.New("broken link")
	ErrFreedInUse  = errors.New("freed node still linked")
	ErrLineOutside = errors.New("line not reachable from head")
)

// Padding is the value written by PadLine.
const Padding = " "

// charNode is a single character slot. An empty value is a placeholder.
type charNode struct {
	value string
	prev  NodeID
	next  NodeID
	free  bool
}

// lineNode owns the character chain starting at head.
type lineNode struct {
	head NodeID
	prev LineID
	next LineID
}

// Document is the sequence of lines making up a text.
// The zero value is not usable; create documents with New.
type Document struct {
	chars []charNode
	lines []lineNode
	free  []NodeID
	head  LineID
}

// New creates an empty document with no lines.
func New(opts ...Option) *Document {
	d := &Document{head: NoLine}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FromLines builds a document with one line per entry. Each line's text is
// split into characters with SplitCharacters; an empty string yields a line
// with no head.
func FromLines(lines []string, opts ...Option) *Document {
	d := New(opts...)
	last := NoLine
	for _, text := range lines {
		head, tail := NoNode, NoNode
		for _, ch := range SplitCharacters(text) {
			n := d.NewChar(ch)
			if !head.Valid() {
				head = n
			} else {
				d.link(tail, n)
			}
			tail = n
		}
		last = d.AddLineAfter(last, head)
	}
	return d
}

// SplitCharacters splits s into user-perceived characters (grapheme
// clusters). Each element becomes one character node.
func SplitCharacters(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// IsEmpty returns true if the document has no lines at all.
func (d *Document) IsEmpty() bool {
	return !d.head.Valid()
}

// Head returns the first line, or NoLine for an empty document.
func (d *Document) Head() LineID {
	return d.head
}

// Reset drops every line and character.
func (d *Document) Reset() {
	d.chars = d.chars[:0]
	d.lines = d.lines[:0]
	d.free = d.free[:0]
	d.head = NoLine
}

// Character nodes

// NewChar allocates an unlinked character node holding value.
// Freed slots are reused before the arena grows.
func (d *Document) NewChar(value string) NodeID {
	node := charNode{value: value, prev: NoNode, next: NoNode}
	if n := len(d.free); n > 0 {
		id := d.free[n-1]
		d.free = d.free[:n-1]
		d.chars[id] = node
		return id
	}
	d.chars = append(d.chars, node)
	return NodeID(len(d.chars) - 1)
}

// Value returns the character stored at n. Placeholders return "".
func (d *Document) Value(n NodeID) string {
	return d.chars[n].value
}

// IsPlaceholder returns true if n holds no printable character.
func (d *Document) IsPlaceholder(n NodeID) bool {
	return d.chars[n].value == ""
}

// Next returns the successor of n within its line, or NoNode.
func (d *Document) Next(n NodeID) NodeID {
	if !n.Valid() {
		return NoNode
	}
	return d.chars[n].next
}

// Prev returns the predecessor of n within its line, or NoNode.
func (d *Document) Prev(n NodeID) NodeID {
	if !n.Valid() {
		return NoNode
	}
	return d.chars[n].prev
}

func (d *Document) link(a, b NodeID) {
	if a.Valid() {
		d.chars[a].next = b
	}
	if b.Valid() {
		d.chars[b].prev = a
	}
}

// CreateEmptyLine returns the head of a chain of length placeholder nodes,
// or NoNode when length <= 0.
func (d *Document) CreateEmptyLine(length int) NodeID {
	if length <= 0 {
		return NoNode
	}
	head := d.NewChar("")
	cur := head
	for i := 1; i < length; i++ {
		n := d.NewChar("")
		d.link(cur, n)
		cur = n
	}
	return head
}

// InsertAfter splices a new node holding value right after n and returns it.
func (d *Document) InsertAfter(n NodeID, value string) NodeID {
	id := d.NewChar(value)
	next := d.chars[n].next
	d.link(id, next)
	d.link(n, id)
	return id
}

// Remove unlinks n from line l, updating the line head when n is the head,
// and releases its slot. It returns the node that followed n.
func (d *Document) Remove(l LineID, n NodeID) NodeID {
	node := d.chars[n]
	if node.prev.Valid() {
		d.chars[node.prev].next = node.next
	} else {
		d.lines[l].head = node.next
	}
	if node.next.Valid() {
		d.chars[node.next].prev = node.prev
	}
	d.chars[n] = charNode{prev: NoNode, next: NoNode, free: true}
	d.free = append(d.free, n)
	return node.next
}

// Line nodes

// AddLineAfter creates a line whose chain starts at head and links it after
// l. With l == NoLine the line is appended at the end of the document.
func (d *Document) AddLineAfter(l LineID, head NodeID) LineID {
	if !l.Valid() {
		l = d.LastLine()
	}
	d.lines = append(d.lines, lineNode{head: head, prev: l, next: NoLine})
	id := LineID(len(d.lines) - 1)
	if !l.Valid() {
		d.head = id
		return id
	}
	next := d.lines[l].next
	d.lines[id].next = next
	if next.Valid() {
		d.lines[next].prev = id
	}
	d.lines[l].next = id
	return id
}

// AppendLine adds a line at the end of the document.
func (d *Document) AppendLine(head NodeID) LineID {
	return d.AddLineAfter(NoLine, head)
}

// LastLine returns the final line, or NoLine for an empty document.
func (d *Document) LastLine() LineID {
	l := d.head
	for l.Valid() && d.lines[l].next.Valid() {
		l = d.lines[l].next
	}
	return l
}

// LineHead returns the first character of l, or NoNode for an empty line.
func (d *Document) LineHead(l LineID) NodeID {
	return d.lines[l].head
}

// SetLineHead replaces the head reference of l.
func (d *Document) SetLineHead(l LineID, n NodeID) {
	d.lines[l].head = n
	if n.Valid() {
		d.chars[n].prev = NoNode
	}
}

// HasContent returns true if l exists and holds at least one node.
func (d *Document) HasContent(l LineID) bool {
	return l.Valid() && d.lines[l].head.Valid()
}

// NextLine returns the line after l, or NoLine.
func (d *Document) NextLine(l LineID) LineID {
	if !l.Valid() {
		return NoLine
	}
	return d.lines[l].next
}

// PrevLine returns the line before l, or NoLine.
func (d *Document) PrevLine(l LineID) LineID {
	if !l.Valid() {
		return NoLine
	}
	return d.lines[l].prev
}

// Traversal

// LineAt walks row links from the head. It returns NoLine when the
// document has fewer lines.
func (d *Document) LineAt(row int) LineID {
	if row < 0 {
		return NoLine
	}
	l := d.head
	for i := 0; l.Valid() && i < row; i++ {
		l = d.lines[l].next
	}
	return l
}

// NodeAt walks col links from the head of l. It returns NoNode when the
// line is shorter.
func (d *Document) NodeAt(l LineID, col int) NodeID {
	if !l.Valid() || col < 0 {
		return NoNode
	}
	n := d.lines[l].head
	for i := 0; n.Valid() && i < col; i++ {
		n = d.chars[n].next
	}
	return n
}

// LineLen returns the number of nodes in l, placeholders included.
func (d *Document) LineLen(l LineID) int {
	count := 0
	for n := d.lines[l].head; n.Valid(); n = d.chars[n].next {
		count++
	}
	return count
}

// LastNode returns the final node of l and its column, or (NoNode, -1) for
// an empty line.
func (d *Document) LastNode(l LineID) (NodeID, int) {
	n := d.lines[l].head
	if !n.Valid() {
		return NoNode, -1
	}
	col := 0
	for d.chars[n].next.Valid() {
		n = d.chars[n].next
		col++
	}
	return n, col
}

// PadLine right-pads l with Padding nodes until it holds length nodes.
func (d *Document) PadLine(l LineID, length int) {
	last, col := d.LastNode(l)
	for size := col + 1; size < length; size++ {
		if !last.Valid() {
			last = d.NewChar(Padding)
			d.SetLineHead(l, last)
			continue
		}
		last = d.InsertAfter(last, Padding)
	}
}

// Queries

// LineText returns the printable text of l; placeholders are skipped.
func (d *Document) LineText(l LineID) string {
	var sb strings.Builder
	for n := d.lines[l].head; n.Valid(); n = d.chars[n].next {
		sb.WriteString(d.chars[n].value)
	}
	return sb.String()
}

// Lines returns the printable text of every line in order.
func (d *Document) Lines() []string {
	out := make([]string, 0, len(d.lines))
	for l := d.head; l.Valid(); l = d.lines[l].next {
		out = append(out, d.LineText(l))
	}
	return out
}

// Columns returns the value of every node of l in column order.
// Placeholders appear as empty strings.
func (d *Document) Columns(l LineID) []string {
	var out []string
	for n := d.lines[l].head; n.Valid(); n = d.chars[n].next {
		out = append(out, d.chars[n].value)
	}
	return out
}

// CountCharacters returns the number of character nodes in the document,
// placeholders and padding included.
func (d *Document) CountCharacters() int {
	count := 0
	for l := d.head; l.Valid(); l = d.lines[l].next {
		count += d.LineLen(l)
	}
	return count
}

// CountLines returns the number of lines.
func (d *Document) CountLines() int {
	count := 0
	for l := d.head; l.Valid(); l = d.lines[l].next {
		count++
	}
	return count
}

// Check verifies that every prev link mirrors the corresponding next link
// on both levels and that no freed node is still reachable.
func (d *Document) Check() error {
	prevLine := NoLine
	row := 0
	for l := d.head; l.Valid(); l = d.lines[l].next {
		if d.lines[l].prev != prevLine {
			return fmt.Errorf("row %d: line prev %d, want %d: %w", row, d.lines[l].prev, prevLine, ErrBrokenLink)
		}
		prevNode := NoNode
		col := 0
		for n := d.lines[l].head; n.Valid(); n = d.chars[n].next {
			if d.chars[n].free {
				return fmt.Errorf("row %d col %d: %w", row, col, ErrFreedInUse)
			}
			if d.chars[n].prev != prevNode {
				return fmt.Errorf("row %d col %d: node prev %d, want %d: %w", row, col, d.chars[n].prev, prevNode, ErrBrokenLink)
			}
			prevNode = n
			col++
		}
		prevLine = l
		row++
	}
	if row != len(d.lines) {
		return fmt.Errorf("%d of %d lines reachable: %w", row, len(d.lines), ErrLineOutside)
	}
	return nil
}
