package history

import (
	"time"

	"github.com/dshills/linkedit/internal/engine/buffer"
	"github.com/dshills/linkedit/internal/engine/cursor"
)

// Snapshot is a deep copy of the editor state taken before an operation.
// The cursor's line and node references address nodes of Document.
type Snapshot struct {
	Document  *buffer.Document
	Cursor    cursor.Cursor
	Op        string    // Operation that was about to run
	Timestamp time.Time // When the snapshot was taken
}

// Capture clones doc and pairs it with cur.
func Capture(op string, doc *buffer.Document, cur cursor.Cursor) *Snapshot {
	var clone *buffer.Document
	if doc != nil {
		clone = doc.Clone()
	} else {
		clone = buffer.New()
	}
	return &Snapshot{
		Document:  clone,
		Cursor:    cur,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// Info summarizes the snapshot.
func (s *Snapshot) Info() OperationInfo {
	return OperationInfo{
		Description: s.Op,
		Timestamp:   s.Timestamp,
		Lines:       s.Document.CountLines(),
		Characters:  s.Document.CountCharacters(),
		Cursor:      s.Cursor.Point(),
	}
}

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Operation name
	Timestamp   time.Time // When the snapshot was taken
	Lines       int       // Line count of the saved document
	Characters  int       // Character count of the saved document
	Cursor      buffer.Point
}
