// Package history provides undo/redo for the linked-list editor engine.
//
// History stores whole-state snapshots rather than inverse operations. Before
// every mutating operation the engine records a deep copy of the document
// together with the cursor; undo swaps the live state for the newest copy and
// keeps a copy of the state it replaced on the redo stack.
//
// # History Stack
//
//	h := NewHistory(100) // at most 100 undo entries
//
//	h.Record("insert", doc, cur)
//	// ... mutate doc ...
//
//	err := h.Undo(doc, cur, func(s *Snapshot) {
//	    doc, cur = s.Document, s.Cursor
//	})
//
// Recording a new snapshot clears the redo stack. Both stacks are bounded by
// the same capacity and drop their oldest entries first.
//
// # Restoration Mode
//
// While Undo or Redo runs its restore callback the history is in restoration
// mode and Record is a no-op, so restoring state never captures a snapshot of
// its own.
//
// # Grouping
//
// Several mutations can share one undo entry:
//
//	h.BeginGroup("script")
//	// ... multiple edits ...
//	h.EndGroup()
//
// Only the state before the first mutation of the group is kept.
package history
