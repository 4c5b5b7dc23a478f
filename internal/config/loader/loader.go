// Package loader reads linkedit configuration into generic maps.
//
// File loaders parse TOML or YAML documents, EnvLoader reads LINKEDIT_*
// environment variables, and DeepMerge layers the results so that later
// sources override earlier ones.
package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileLoader is the interface for loaders that read from files.
type FileLoader interface {
	Loader
	// LoadFrom reads configuration from a specific path.
	LoadFrom(path string) (map[string]any, error)
}

// FileSystem is the read side of a file system.
// vfs.OSFS and vfs.MemFS both satisfy it.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// ForPath returns the file loader matching the extension of path.
func ForPath(fsys FileSystem, path string) (FileLoader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoaderWithFS(fsys, path), nil
	case ".yaml", ".yml":
		return NewYAMLLoaderWithFS(fsys, path), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// LoadAll loads every loader in order and merges the results.
// Later loaders override earlier ones.
func LoadAll(loaders ...Loader) (map[string]any, error) {
	merged := make(map[string]any)
	for _, l := range loaders {
		data, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, data)
	}
	return merged, nil
}
