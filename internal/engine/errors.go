package engine

import (
	"errors"

	"github.com/dshills/linkedit/internal/engine/history"
)

// Errors returned by engine operations.
var (
	// ErrNothingToDelete indicates Delete was called with no character
	// under the cursor.
	ErrNothingToDelete = errors.New("nothing to delete")

	// ErrNothingDeleted indicates Delete removed no characters.
	ErrNothingDeleted = errors.New("could not delete any characters")

	// ErrCursorDetached indicates the cursor does not address the node it
	// holds.
	ErrCursorDetached = errors.New("cursor detached from document")

	// ErrNothingToUndo indicates the undo stack is empty.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the redo stack is empty.
	ErrNothingToRedo = history.ErrNothingToRedo
)
