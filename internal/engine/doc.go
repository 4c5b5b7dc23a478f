// Package engine provides the core of the linkedit editor.
//
// The engine package serves as the main facade, combining the linked-list
// document, the cursor and snapshot-based undo/redo into a unified,
// thread-safe API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: two-level linked document stored in an index-addressed arena
//   - cursor: row/column position holding line and node references
//   - history: bounded undo/redo stacks of whole-document snapshots
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing writes.
//
// # Basic Usage
//
//	e := engine.New()
//
//	e.Insert("abc")      // "abc", cursor on 'c' at (0, 2)
//	e.Goto(1, 0)         // second line is created
//	e.Insert("de")       // placeholder line becomes "de"
//	e.Delete(1)          // removes the character under the cursor
//
//	e.Render(os.Stdout)  // prints each line with '|' after the cursor
//
// # Addressing
//
// Goto never fails on valid coordinates: missing lines are appended and short
// lines are right-padded with spaces. Forward and Back step across line
// boundaries but never onto a line without characters. Delete works within a
// single line and never joins lines.
//
// # Undo/Redo
//
// Goto, Insert, Delete and Load save a deep copy of the document and cursor
// before running. Undo and Redo swap the live state for a saved one:
//
//	e.Insert("Hello")
//	e.Undo() // document is empty again
//	e.Redo() // "Hello"
//
// Group multiple operations into a single undo unit:
//
//	e.BeginUndoGroup("script")
//	e.Goto(0, 0)
//	e.Insert("x")
//	e.EndUndoGroup()
//
//	e.Undo() // undoes both operations at once
//
// # Loading
//
// Load replaces the document with lines from any LineSource:
//
//	err := e.Load(engine.StaticLines{"first", "second"})
//
// # Error Handling
//
// The package defines several error values:
//
//   - ErrNothingToDelete: Delete with no character under the cursor
//   - ErrNothingDeleted: Delete removed nothing
//   - ErrNothingToUndo: Undo stack is empty
//   - ErrNothingToRedo: Redo stack is empty
//   - ErrCursorDetached: reported by Check
package engine
