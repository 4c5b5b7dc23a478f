package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dshills/linkedit/internal/engine"
	"github.com/dshills/linkedit/internal/filestore"
	"github.com/dshills/linkedit/internal/vfs"
)

// ErrQuit signals that the session should end normally.
var ErrQuit = errors.New("quit requested")

// UsageError reports a malformed command. The session state is unchanged.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usage(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (save, load, lua, source)
	Target string // Target of the operation (e.g., file path)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Message turns a command error into the line printed to the user.
func Message(err error) string {
	var uerr *UsageError
	if errors.As(err, &uerr) {
		return uerr.Message
	}

	switch {
	case errors.Is(err, engine.ErrNothingToDelete):
		return "Error: Nothing to delete"
	case errors.Is(err, engine.ErrNothingDeleted):
		return "Error: Could not delete any characters"
	case errors.Is(err, engine.ErrNothingToUndo):
		return "Nothing to undo"
	case errors.Is(err, engine.ErrNothingToRedo):
		return "Nothing to redo"
	}

	var oerr *OperationError
	if !errors.As(err, &oerr) {
		return "Error: " + err.Error()
	}

	switch oerr.Op {
	case "save":
		return "Error saving file: " + cause(oerr.Err).Error()
	case "load":
		switch {
		case errors.Is(oerr.Err, fs.ErrNotExist):
			return fmt.Sprintf("Error: File '%s' not found", oerr.Target)
		case errors.Is(oerr.Err, fs.ErrPermission):
			return fmt.Sprintf("Error: No permission to read '%s'", oerr.Target)
		case errors.Is(oerr.Err, vfs.ErrDecode):
			return fmt.Sprintf("Error: Could not decode file '%s' (try different encoding)", oerr.Target)
		default:
			return "Error loading file: " + cause(oerr.Err).Error()
		}
	case "lua", "source":
		return "Lua error: " + oerr.Err.Error()
	default:
		return "Error: " + oerr.Error()
	}
}

// cause strips the filestore path wrapper, whose text repeats the file name.
func cause(err error) error {
	var perr *filestore.PathError
	if errors.As(err, &perr) && perr.Err != nil {
		return perr.Err
	}
	return err
}
