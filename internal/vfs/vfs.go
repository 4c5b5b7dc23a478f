// Package vfs provides a small file system abstraction and the text
// decoding rules used when reading documents.
//
// The FS interface allows swapping the underlying file system
// implementation, enabling tests with the in-memory MemFS.
package vfs

import "io/fs"

// FS is the file system surface used by linkedit.
type FS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Exists returns true if the path exists.
	Exists(path string) bool
}
