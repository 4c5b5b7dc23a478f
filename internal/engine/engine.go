package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dshills/linkedit/internal/engine/buffer"
	"github.com/dshills/linkedit/internal/engine/cursor"
	"github.com/dshills/linkedit/internal/engine/history"
)

// Re-export commonly used types for convenience.
type (
	// Point represents a row/column position.
	Point = buffer.Point

	// Cursor is the editing position.
	Cursor = cursor.Cursor

	// OperationInfo describes a history entry.
	OperationInfo = history.OperationInfo
)

// Operation names recorded in history.
const (
	OpGoto   = "goto"
	OpInsert = "insert"
	OpDelete = "delete"
	OpLoad   = "load"
)

// LineSource supplies the lines of a document for Load.
type LineSource interface {
	Lines() ([]string, error)
}

// StaticLines is a LineSource backed by a slice.
type StaticLines []string

// Lines returns the slice.
func (s StaticLines) Lines() ([]string, error) {
	return s, nil
}

// Engine is the main facade for the linked-list editor.
// It combines the document, the cursor and snapshot history into one API.
//
// All operations are thread-safe and can be called from multiple goroutines.
type Engine struct {
	mu sync.RWMutex

	// Core components
	doc     *buffer.Document
	cur     cursor.Cursor
	history *history.History

	// Configuration
	maxUndoEntries int

	// Initialization
	initLines []string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxUndoEntries: DefaultMaxUndoEntries,
	}

	// Apply options to get configuration
	for _, opt := range opts {
		opt(e)
	}

	e.doc = buffer.New()
	e.cur = cursor.Unset()
	e.history = history.NewHistory(e.maxUndoEntries)

	if len(e.initLines) > 0 {
		e.doc = buffer.FromLines(e.initLines)
		e.gotoLocked(0, 0)
		e.initLines = nil
	}

	return e
}

// ============================================================================
// Navigation
// ============================================================================

// Goto moves the cursor to (row, col), growing the document as needed.
// Missing rows are appended as lines holding one placeholder and short lines
// are right-padded with spaces up to col+1 characters.
//
// On an empty document a single line is created whatever row is, and the
// cursor keeps the requested row.
func (e *Engine) Goto(row, col int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Record(OpGoto, e.doc, e.cur)
	e.gotoLocked(row, col)
}

// gotoLocked performs Goto without acquiring the lock or recording history.
func (e *Engine) gotoLocked(row, col int) {
	if row < 0 || col < 0 {
		return
	}

	d := e.doc
	if d.IsEmpty() {
		l := d.AppendLine(d.CreateEmptyLine(1))
		d.PadLine(l, col+1)
		e.cur = cursor.At(row, col, l, d.NodeAt(l, col))
		return
	}

	l := d.Head()
	for i := 0; i < row; i++ {
		next := d.NextLine(l)
		if !next.Valid() {
			next = d.AddLineAfter(l, d.CreateEmptyLine(1))
		}
		l = next
	}

	if !d.HasContent(l) {
		d.SetLineHead(l, d.CreateEmptyLine(1))
	}
	d.PadLine(l, col+1)

	e.cur = cursor.At(row, col, l, d.NodeAt(l, col))
}

// Forward moves the cursor one character right. At the end of a line it
// moves to the first character of the next line if that line has content.
func (e *Engine) Forward() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cur.IsSet() {
		return
	}

	d := e.doc
	if next := d.Next(e.cur.Node); next.Valid() {
		e.cur.Node = next
		e.cur.Col++
		return
	}

	if next := d.NextLine(e.cur.Line); d.HasContent(next) {
		e.cur = cursor.At(e.cur.Row+1, 0, next, d.LineHead(next))
	}
}

// Back moves the cursor one character left. At the start of a line it moves
// to the last character of the previous line if that line has content.
func (e *Engine) Back() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cur.IsSet() {
		return
	}

	d := e.doc
	if prev := d.Prev(e.cur.Node); prev.Valid() {
		e.cur.Node = prev
		e.cur.Col--
		return
	}

	if prev := d.PrevLine(e.cur.Line); d.HasContent(prev) {
		last, col := d.LastNode(prev)
		e.cur = cursor.At(e.cur.Row-1, col, prev, last)
	}
}

// Home moves the cursor to the first character of the current line.
func (e *Engine) Home() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cur.IsSet() || !e.doc.HasContent(e.cur.Line) {
		return
	}
	e.cur.Node = e.doc.LineHead(e.cur.Line)
	e.cur.Col = 0
}

// End moves the cursor to the last character of the current line.
func (e *Engine) End() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cur.IsSet() || !e.doc.HasContent(e.cur.Line) {
		return
	}
	e.cur.Node, e.cur.Col = e.doc.LastNode(e.cur.Line)
}

// ============================================================================
// Mutation
// ============================================================================

// Insert places s immediately after the cursor, one node per grapheme
// cluster, and leaves the cursor on the last inserted character.
//
// With no cursor the document is replaced by a single line starting with s.
// On a line without characters the first character becomes the line head.
func (e *Engine) Insert(s string) {
	chars := buffer.SplitCharacters(s)
	if len(chars) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Record(OpInsert, e.doc, e.cur)

	d := e.doc
	if !e.cur.IsSet() {
		d.Reset()
		n := d.NewChar(chars[0])
		l := d.AppendLine(n)
		e.cur = cursor.At(0, 0, l, n)
		chars = chars[1:]
	}

	if len(chars) > 0 && !d.HasContent(e.cur.Line) {
		if !e.cur.HasLine() {
			return
		}
		n := d.NewChar(chars[0])
		d.SetLineHead(e.cur.Line, n)
		e.cur.Node = n
		e.cur.Col = 0
		chars = chars[1:]
	}

	if len(chars) == 0 || !e.cur.HasNode() {
		return
	}

	for _, ch := range chars {
		e.cur.Node = d.InsertAfter(e.cur.Node, ch)
		e.cur.Col++
	}
}

// Delete removes up to n characters starting at the cursor, stopping at the
// end of the current line. Lines are never merged.
//
// The cursor lands on the character after the removed run, else the one
// before it, else the last character of the previous line, else the first
// character of the next line. When none exist the document becomes empty and
// the cursor is unset.
//
// Delete is a no-op for n <= 0 or an unset cursor. It returns
// ErrNothingToDelete without recording history when the cursor holds no
// character.
func (e *Engine) Delete(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n <= 0 || !e.cur.IsSet() {
		return nil
	}
	if !e.cur.HasNode() || !e.cur.HasLine() {
		return ErrNothingToDelete
	}

	e.history.Record(OpDelete, e.doc, e.cur)

	d := e.doc
	prev := d.Prev(e.cur.Node)
	node := e.cur.Node
	removed := 0
	for removed < n && node.Valid() {
		node = d.Remove(e.cur.Line, node)
		removed++
	}

	if removed == 0 {
		return ErrNothingDeleted
	}

	switch {
	case node.Valid():
		e.cur.Node = node
	case prev.Valid():
		e.cur.Node = prev
		e.cur.Col--
	case d.HasContent(d.PrevLine(e.cur.Line)):
		l := d.PrevLine(e.cur.Line)
		last, col := d.LastNode(l)
		e.cur = cursor.At(e.cur.Row-1, col, l, last)
	case d.HasContent(d.NextLine(e.cur.Line)):
		l := d.NextLine(e.cur.Line)
		e.cur = cursor.At(e.cur.Row+1, 0, l, d.LineHead(l))
	default:
		d.Reset()
		e.cur = cursor.Unset()
	}
	return nil
}

// Load replaces the document with the lines supplied by src and moves the
// cursor to (0, 0), or unsets it when there are no lines. If src fails the
// document is left untouched; the snapshot taken beforehand remains on the
// undo stack.
func (e *Engine) Load(src LineSource) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Record(OpLoad, e.doc, e.cur)

	lines, err := src.Lines()
	if err != nil {
		return err
	}

	e.doc = buffer.FromLines(lines)
	e.cur = cursor.Unset()
	if !e.doc.IsEmpty() {
		e.gotoLocked(0, 0)
	}
	return nil
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo restores the state saved before the most recent mutation.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Undo(e.doc, e.cur, e.restoreLocked)
}

// Redo restores the state most recently replaced by Undo.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Redo(e.doc, e.cur, e.restoreLocked)
}

func (e *Engine) restoreLocked(s *history.Snapshot) {
	e.doc = s.Document
	e.cur = s.Cursor
}

// CanUndo returns true if undo is available.
func (e *Engine) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (e *Engine) CanRedo() bool {
	return e.history.CanRedo()
}

// UndoCount returns the number of available undo operations.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount returns the number of available redo operations.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// UndoInfo describes the undo stack, oldest first.
func (e *Engine) UndoInfo() []OperationInfo {
	return e.history.UndoInfo()
}

// RedoInfo describes the redo stack, oldest first.
func (e *Engine) RedoInfo() []OperationInfo {
	return e.history.RedoInfo()
}

// BeginUndoGroup starts grouping mutations into one undo entry.
func (e *Engine) BeginUndoGroup(name string) {
	e.history.BeginGroup(name)
}

// EndUndoGroup ends the current undo group.
func (e *Engine) EndUndoGroup() {
	e.history.EndGroup()
}

// Transaction runs fn with every mutation it makes grouped into one undo
// entry.
func (e *Engine) Transaction(name string, fn func() error) error {
	return e.history.Transaction(name, fn)
}

// ClearHistory removes all undo/redo history.
func (e *Engine) ClearHistory() {
	e.history.Clear()
}

// SetMaxUndoEntries changes the history capacity, trimming the oldest
// entries if needed.
func (e *Engine) SetMaxUndoEntries(max int) {
	e.history.SetMaxEntries(max)
}

// MaxUndoEntries returns the history capacity.
func (e *Engine) MaxUndoEntries() int {
	return e.history.MaxEntries()
}

// ============================================================================
// Read Operations
// ============================================================================

// Cursor returns the current cursor.
func (e *Engine) Cursor() Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur
}

// Point returns the cursor position.
func (e *Engine) Point() Point {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.Point()
}

// CountCharacters returns the number of character nodes, including
// placeholders and padding.
func (e *Engine) CountCharacters() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.CountCharacters()
}

// CountLines returns the number of lines.
func (e *Engine) CountLines() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.CountLines()
}

// Lines returns the text of every line with placeholders skipped.
func (e *Engine) Lines() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Lines()
}

// IsEmpty returns true if the document has no lines.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.IsEmpty()
}

// Snapshot returns a deep copy of the document. The cursor's references
// stay valid against it.
func (e *Engine) Snapshot() *buffer.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc.Clone()
}

// Render writes the document to w with a '|' marking the cursor: right after
// the character under the cursor, or at the end of the line when the cursor
// sits one past its last character. Lines that produce no output are
// skipped.
func (e *Engine) Render(w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	d := e.doc
	row := 0
	for l := d.Head(); l.Valid(); l = d.NextLine(l) {
		var sb strings.Builder
		onRow := row == e.cur.Row
		col := 0
		for _, v := range d.Columns(l) {
			sb.WriteString(v)
			if onRow && col == e.cur.Col {
				sb.WriteByte('|')
			}
			col++
		}
		if onRow && col == e.cur.Col {
			sb.WriteByte('|')
		}

		if sb.Len() > 0 || (onRow && e.cur.Col == 0) {
			sb.WriteByte('\n')
			if _, err := io.WriteString(w, sb.String()); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

// RenderString returns the output of Render as a string.
func (e *Engine) RenderString() string {
	var sb strings.Builder
	_ = e.Render(&sb)
	return sb.String()
}

// Check verifies the document links and that the cursor addresses the node
// it holds. The cursor row must address the cursor line unless it lies past
// the last line, which Goto on an empty document allows.
func (e *Engine) Check() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.doc.Check(); err != nil {
		return err
	}
	if !e.cur.IsSet() {
		return e.cur.Resolve(e.doc)
	}
	if !e.cur.HasLine() {
		return fmt.Errorf("%v has no line: %w", e.cur, ErrCursorDetached)
	}
	if got := e.doc.NodeAt(e.cur.Line, e.cur.Col); got != e.cur.Node {
		return fmt.Errorf("%v holds node %d, column addresses %d: %w", e.cur, e.cur.Node, got, ErrCursorDetached)
	}
	if e.cur.Row < e.doc.CountLines() {
		if err := e.cur.Resolve(e.doc); err != nil {
			return fmt.Errorf("%w: %w", ErrCursorDetached, err)
		}
	}
	return nil
}
