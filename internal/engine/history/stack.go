package history

import (
	"errors"
	"sync"

	"github.com/dshills/linkedit/internal/engine/buffer"
	"github.com/dshills/linkedit/internal/engine/cursor"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is the undo depth used when none is configured.
const DefaultMaxEntries = 100

// History manages the undo/redo snapshot stacks of one document.
type History struct {
	mu sync.Mutex

	undoStack []*Snapshot
	redoStack []*Snapshot

	// Grouping state
	grouping     bool
	groupName    string
	groupCapture bool

	restoring bool

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Record captures doc and cur before op mutates them.
// Clears the redo stack. Does nothing in restoration mode.
func (h *History) Record(op string, doc *buffer.Document, cur cursor.Cursor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.restoring {
		return
	}

	if h.grouping {
		h.redoStack = nil
		if h.groupCapture {
			return
		}
		h.groupCapture = true
		op = h.groupName
	}

	h.pushLocked(Capture(op, doc, cur))
}

// pushLocked adds a snapshot without acquiring the lock.
func (h *History) pushLocked(s *Snapshot) {
	h.undoStack = trim(append(h.undoStack, s), h.maxEntries)

	// Clear redo stack
	h.redoStack = nil
}

// trim drops the oldest entries beyond max.
func trim(stack []*Snapshot, max int) []*Snapshot {
	if len(stack) > max {
		excess := len(stack) - max
		stack = stack[excess:]
	}
	return stack
}

// Undo pops the newest undo snapshot and hands it to restore. The state
// being replaced (doc and cur) is saved on the redo stack first.
// The lock is released while restore runs; Record calls made by restore are
// ignored.
func (h *History) Undo(doc *buffer.Document, cur cursor.Cursor, restore func(*Snapshot)) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = trim(append(h.redoStack, Capture(entry.Op, doc, cur)), h.maxEntries)
	h.restoring = true
	// The group's entry may be gone; the next edit in the group records again.
	h.groupCapture = false
	h.mu.Unlock()

	h.restore(entry, restore)
	return nil
}

// Redo is the mirror of Undo.
func (h *History) Redo(doc *buffer.Document, cur cursor.Cursor, restore func(*Snapshot)) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = trim(append(h.undoStack, Capture(entry.Op, doc, cur)), h.maxEntries)
	h.restoring = true
	h.groupCapture = false
	h.mu.Unlock()

	h.restore(entry, restore)
	return nil
}

func (h *History) restore(entry *Snapshot, restore func(*Snapshot)) {
	defer func() {
		h.mu.Lock()
		h.restoring = false
		h.mu.Unlock()
	}()
	if restore != nil {
		restore(entry)
	}
}

// IsRestoring returns true while an undo or redo restore callback runs.
func (h *History) IsRestoring() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restoring
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCapture = false
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo returns info about available redo operations, oldest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

func infos(stack []*Snapshot) []OperationInfo {
	result := make([]OperationInfo, len(stack))
	for i, entry := range stack {
		result[i] = entry.Info()
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.undoStack[len(h.undoStack)-1].Info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}
	return h.redoStack[len(h.redoStack)-1].Info(), true
}

// SetMaxEntries changes the maximum number of entries per stack.
// If a stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.undoStack = trim(h.undoStack, max)
	h.redoStack = trim(h.redoStack, max)
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
