// Package filestore persists documents as plain text files.
//
// A document is stored one line per row with every line terminated by a
// newline. Reading accepts UTF-8 (with or without BOM) and BOM-tagged
// UTF-16, and normalizes CRLF and CR line endings.
package filestore

import (
	"io/fs"
	"strings"

	"github.com/dshills/linkedit/internal/vfs"
)

// Store reads and writes documents through a vfs.FS.
type Store struct {
	fs vfs.FS

	// Configuration
	perm        fs.FileMode
	maxFileSize int64 // Maximum file size to load (0 = unlimited)
}

// Option configures a Store.
type Option func(*Store)

// WithFileMode sets the permissions used for newly created files.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *Store) {
		s.perm = perm
	}
}

// WithMaxFileSize sets the maximum file size.
func WithMaxFileSize(size int64) Option {
	return func(s *Store) {
		s.maxFileSize = size
	}
}

// New creates a Store on top of fsys.
func New(fsys vfs.FS, opts ...Option) *Store {
	s := &Store{
		fs:          fsys,
		perm:        0644,
		maxFileSize: 10 * 1024 * 1024, // 10MB default
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes lines to path, each followed by a newline.
func (s *Store) Save(path string, lines []string) error {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := s.fs.WriteFile(path, []byte(sb.String()), s.perm); err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// ReadLines reads path and returns its lines along with the detected
// encoding. Errors wrap fs.ErrNotExist, fs.ErrPermission or vfs.ErrDecode
// where applicable.
func (s *Store) ReadLines(path string) ([]string, vfs.Encoding, error) {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, "", &PathError{Op: "load", Path: path, Err: err}
	}
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return nil, "", &PathError{Op: "load", Path: path, Err: ErrFileTooLarge}
	}

	text, enc, err := vfs.Decode(content)
	if err != nil {
		return nil, enc, &PathError{Op: "load", Path: path, Err: err}
	}
	return vfs.SplitLines(text), enc, nil
}

// Source returns a line source reading path on demand.
func (s *Store) Source(path string) *Source {
	return &Source{store: s, path: path}
}

// Source reads the lines of one file when asked. It satisfies the engine's
// LineSource interface.
type Source struct {
	store    *Store
	path     string
	encoding vfs.Encoding
}

// Lines reads the file.
func (src *Source) Lines() ([]string, error) {
	lines, enc, err := src.store.ReadLines(src.path)
	src.encoding = enc
	return lines, err
}

// Path returns the file path.
func (src *Source) Path() string {
	return src.path
}

// Encoding returns the encoding detected by the last call to Lines.
func (src *Source) Encoding() vfs.Encoding {
	return src.encoding
}
