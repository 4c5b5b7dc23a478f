// Package cursor provides the cursor used to address a linked document.
//
// A Cursor carries both a logical address (Row, Col) and direct references
// into the document arena (Line, Node). The engine keeps the two consistent
// after every operation:
//
//   - Line is the line reached by walking Row links from the document head.
//   - Node is the character reached by walking Col links from Line's head.
//
// The zero value is not meaningful; use Unset for the "no cursor" state,
// which is encoded as (-1, -1) with no references.
//
// Cursor is a small value type and is copied freely, including into history
// snapshots. Its references stay valid against a cloned document because the
// buffer package addresses nodes by index.
package cursor
