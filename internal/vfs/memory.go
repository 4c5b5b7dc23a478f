package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemFS implements FS in memory. It is primarily used for testing.
// File modes are honoured for reads and writes: a file without any read
// bit fails ReadFile with fs.ErrPermission, one without any write bit
// fails WriteFile the same way.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu    sync.RWMutex
	files map[string]*memFile
}

type memFile struct {
	content []byte
	mode    fs.FileMode
	modTime time.Time
}

// NewMemFS creates a new in-memory file system.
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string]*memFile),
	}
}

// Ensure MemFS implements FS.
var _ FS = (*MemFS)(nil)

// ReadFile reads the entire file content.
func (m *MemFS) ReadFile(filePath string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = m.cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	if f.mode&0444 == 0 {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrPermission}
	}

	// Return a copy to prevent modification
	content := make([]byte, len(f.content))
	copy(content, f.content)
	return content, nil
}

// WriteFile writes data to a file, creating it if necessary.
func (m *MemFS) WriteFile(filePath string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	if f, ok := m.files[filePath]; ok {
		if f.mode&0222 == 0 {
			return &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrPermission}
		}
		perm = f.mode
	}

	// Make a copy of the data
	content := make([]byte, len(data))
	copy(content, data)

	m.files[filePath] = &memFile{
		content: content,
		mode:    perm,
		modTime: time.Now(),
	}
	return nil
}

// Exists returns true if the path exists.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[m.cleanPath(filePath)]
	return ok
}

// Chmod changes the mode of an existing file.
func (m *MemFS) Chmod(filePath string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = m.cleanPath(filePath)
	f, ok := m.files[filePath]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: filePath, Err: fs.ErrNotExist}
	}
	f.mode = mode
	return nil
}

// AddFile is a convenience method for adding files during setup.
func (m *MemFS) AddFile(filePath string, content string) error {
	return m.WriteFile(filePath, []byte(content), 0644)
}

// Files returns all file paths in the file system.
// Useful for testing and debugging.
func (m *MemFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]string, 0, len(m.files))
	for f := range m.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// cleanPath normalizes a path.
func (m *MemFS) cleanPath(p string) string {
	p = path.Clean(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
