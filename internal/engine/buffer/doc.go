// Package buffer provides the linked document model used by the editor
// engine: an ordered sequence of lines, each an ordered sequence of
// characters.
//
// Nodes live in an arena owned by the Document and are addressed by stable
// indices rather than pointers:
//
//   - LineID addresses a line node; lines link to their neighbors by LineID.
//   - NodeID addresses a character node; characters link to their neighbors
//     within one line by NodeID.
//
// NoLine and NoNode stand for an absent link. A line whose head is NoNode is
// an empty line of length zero. A character whose value is the empty string
// is a placeholder: it occupies a column but prints nothing.
//
// Because links are indices, a Document can be duplicated with Clone by
// copying its arena, and any LineID or NodeID taken from the original refers
// to the same node in the copy. The history package relies on this to
// restore cursor references together with a snapshot.
//
// Basic usage:
//
//	doc := buffer.New()
//	line := doc.AppendLine(doc.CreateEmptyLine(1))
//	doc.PadLine(line, 4)           // placeholder + 3 spaces
//	n := doc.NodeAt(line, 3)
//	doc.InsertAfter(n, "x")
//
// Thread Safety:
//
// A Document is not safe for concurrent use. The engine owns its document
// and serializes access.
package buffer
