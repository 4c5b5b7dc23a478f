package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// observed is the externally visible state of an engine.
type observed struct {
	lines []string
	chars int
	point Point
}

func observe(e *Engine) observed {
	return observed{lines: e.Lines(), chars: e.CountCharacters(), point: e.Point()}
}

// applyRandomOp draws one operation and runs it against e.
func applyRandomOp(t *rapid.T, e *Engine) {
	switch rapid.IntRange(0, 9).Draw(t, "op") {
	case 0:
		e.Goto(rapid.IntRange(-1, 4).Draw(t, "row"), rapid.IntRange(0, 6).Draw(t, "col"))
	case 1:
		e.Forward()
	case 2:
		e.Back()
	case 3:
		e.Home()
	case 4:
		e.End()
	case 5:
		e.Insert(rapid.StringMatching(`[a-z ]{1,5}`).Draw(t, "text"))
	case 6:
		_ = e.Delete(rapid.IntRange(0, 4).Draw(t, "n"))
	case 7:
		_ = e.Undo()
	case 8:
		_ = e.Redo()
	case 9:
		lines := rapid.SliceOfN(rapid.StringMatching(`[a-z]{0,5}`), 0, 3).Draw(t, "lines")
		_ = e.Load(StaticLines(lines))
	}
}

// TestPropertyStructuralInvariants verifies links, cursor references and the
// unset-cursor pairing after every operation.
func TestPropertyStructuralInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		numOps := rapid.IntRange(1, 40).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			applyRandomOp(t, e)

			require.NoError(t, e.Check())
			p := e.Point()
			assert.Equal(t, p.Row == -1, p.Col == -1, "row/col unset together: %v", p)
			assert.LessOrEqual(t, e.UndoCount(), DefaultMaxUndoEntries)
			assert.LessOrEqual(t, e.RedoCount(), DefaultMaxUndoEntries)
		}
	})
}

// TestPropertyUndoRedoInverse verifies that redo after undo restores the
// state that undo replaced.
func TestPropertyUndoRedoInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		numOps := rapid.IntRange(1, 20).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			applyRandomOp(t, e)
		}
		if !e.CanUndo() {
			return
		}

		before := observe(e)
		require.NoError(t, e.Undo())
		require.NoError(t, e.Redo())

		assert.Equal(t, before, observe(e))
		require.NoError(t, e.Check())
	})
}

// TestPropertyUndoAllReturnsToStart verifies that undoing every recorded
// operation restores the initial document.
func TestPropertyUndoAllReturnsToStart(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.SliceOfN(rapid.StringMatching(`[a-z]{0,6}`), 1, 4).Draw(t, "initial")
		e := New(WithLines(initial...))
		start := observe(e)

		numOps := rapid.IntRange(1, 30).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			applyRandomOp(t, e)
		}

		for e.CanUndo() {
			require.NoError(t, e.Undo())
		}
		if e.RedoCount() < e.MaxUndoEntries() {
			assert.Equal(t, start, observe(e))
		}
	})
}

// TestPropertyRedoInvalidation verifies that a mutation after undo empties
// the redo stack.
func TestPropertyRedoInvalidation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := New()
		for _, s := range rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,4}`), 1, 5).Draw(t, "inserts") {
			e.Insert(s)
		}
		undos := rapid.IntRange(1, e.UndoCount()).Draw(t, "undos")
		for i := 0; i < undos; i++ {
			require.NoError(t, e.Undo())
		}
		require.True(t, e.CanRedo())

		e.Goto(rapid.IntRange(0, 3).Draw(t, "row"), rapid.IntRange(0, 3).Draw(t, "col"))
		assert.ErrorIs(t, e.Redo(), ErrNothingToRedo)
	})
}

// TestPropertyInsertDeleteInverse verifies that deleting freshly inserted
// text restores the line contents.
func TestPropertyInsertDeleteInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 1, 4).Draw(t, "initial")
		e := New(WithLines(initial...))
		e.Goto(rapid.IntRange(0, len(initial)-1).Draw(t, "row"), rapid.IntRange(0, 7).Draw(t, "col"))
		before := e.Lines()

		s := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "s")
		e.Insert(s)
		for i := 1; i < len(s); i++ {
			e.Back()
		}
		require.NoError(t, e.Delete(len(s)))

		assert.Equal(t, before, e.Lines())
		require.NoError(t, e.Check())
	})
}
