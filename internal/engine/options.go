package engine

import "github.com/dshills/linkedit/internal/engine/history"

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLines sets the initial content of the engine, one entry per line.
// The cursor starts at (0, 0) and no history is recorded.
func WithLines(lines ...string) Option {
	return func(e *Engine) {
		e.initLines = lines
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}
