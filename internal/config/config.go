package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/linkedit/internal/config/loader"
	"github.com/dshills/linkedit/internal/vfs"
)

// Default values.
const (
	DefaultMaxUndo       = 100
	DefaultPrompt        = ">> "
	DefaultLogLevel      = "info"
	DefaultScriptTimeout = 5 * time.Second
)

// Config holds every linkedit setting.
type Config struct {
	Editor  EditorConfig
	Logging LoggingConfig
	Script  ScriptConfig
	Session SessionConfig

	// Source is the config file that contributed to this Config, or empty
	// when none was read.
	Source string
}

// EditorConfig holds buffer settings.
type EditorConfig struct {
	MaxUndo int
	Prompt  string
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string
	File  string
}

// ScriptConfig holds Lua scripting settings.
type ScriptConfig struct {
	Timeout time.Duration
}

// SessionConfig holds REPL session settings.
type SessionConfig struct {
	WatchConfig bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			MaxUndo: DefaultMaxUndo,
			Prompt:  DefaultPrompt,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
		Script: ScriptConfig{
			Timeout: DefaultScriptTimeout,
		},
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Editor.MaxUndo < 1 {
		errs = append(errs, &ValidationError{Path: "editor.maxUndo", Message: "must be at least 1", Value: c.Editor.MaxUndo})
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, &ValidationError{Path: "logging.level", Message: "must be one of debug, info, warn, error", Value: c.Logging.Level})
	}
	if c.Script.Timeout <= 0 {
		errs = append(errs, &ValidationError{Path: "script.timeout", Message: "must be positive", Value: c.Script.Timeout})
	}
	return errors.Join(errs...)
}

// FromMap decodes a merged settings map on top of the defaults.
// Unknown settings are ignored.
func FromMap(data map[string]any) (*Config, error) {
	c := Default()
	if err := c.Apply(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply decodes the settings present in data into c.
func (c *Config) Apply(data map[string]any) error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(decodeInt(data, "editor.maxUndo", &c.Editor.MaxUndo))
	collect(decodeString(data, "editor.prompt", &c.Editor.Prompt))
	collect(decodeString(data, "logging.level", &c.Logging.Level))
	collect(decodeString(data, "logging.file", &c.Logging.File))
	collect(decodeDuration(data, "script.timeout", &c.Script.Timeout))
	collect(decodeBool(data, "session.watchConfig", &c.Session.WatchConfig))

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	return errors.Join(errs...)
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs        loader.FileSystem
	envPrefix string
	overrides map[string]any
}

// WithFileSystem sets the file system the config file is read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// WithOverrides sets the highest priority layer, typically built from
// command line flags. Keys are dot-separated setting paths.
func WithOverrides(overrides map[string]any) Option {
	return func(o *loadOptions) {
		o.overrides = overrides
	}
}

// Load builds a validated Config from the defaults, the file at path,
// the environment, and the overrides. An empty path or a missing file
// skips the file layer.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{
		fs:        vfs.NewOSFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		loaders []loader.Loader
		fileMap map[string]any
	)
	if path != "" {
		fl, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		fileMap, err = fl.Load()
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, staticLoader(fileMap))
	}
	if o.envPrefix != "" {
		loaders = append(loaders, loader.NewEnvLoader(o.envPrefix))
	}

	merged, err := loader.LoadAll(loaders...)
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, expandOverrides(o.overrides))

	c, err := FromMap(merged)
	if err != nil {
		return nil, err
	}
	if fileMap != nil {
		c.Source = path
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultPath returns the per-user config file location, preferring an
// existing YAML file over the TOML default.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		p := filepath.Join(dir, "linkedit", name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, "linkedit", "config.toml")
}

type staticLoader map[string]any

func (s staticLoader) Load() (map[string]any, error) {
	return loader.Clone(s), nil
}

// expandOverrides turns {"editor.maxUndo": 5} into nested maps.
func expandOverrides(overrides map[string]any) map[string]any {
	out := make(map[string]any)
	for path, val := range overrides {
		current := out
		parts := strings.Split(path, ".")
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = val
	}
	return out
}

func decodeInt(data map[string]any, path string, dst *int) error {
	raw, ok := loader.Lookup(data, path)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case uint64:
		*dst = int(v)
	case float64:
		if v != math.Trunc(v) {
			return &TypeError{Path: path, Expected: "int", Actual: "float"}
		}
		*dst = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &TypeError{Path: path, Expected: "int", Actual: "string"}
		}
		*dst = n
	default:
		return &TypeError{Path: path, Expected: "int", Actual: fmt.Sprintf("%T", raw)}
	}
	return nil
}

func decodeString(data map[string]any, path string, dst *string) error {
	raw, ok := loader.Lookup(data, path)
	if !ok {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		return &TypeError{Path: path, Expected: "string", Actual: fmt.Sprintf("%T", raw)}
	}
	*dst = s
	return nil
}

func decodeBool(data map[string]any, path string, dst *bool) error {
	raw, ok := loader.Lookup(data, path)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case bool:
		*dst = v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &TypeError{Path: path, Expected: "bool", Actual: "string"}
		}
		*dst = b
	default:
		return &TypeError{Path: path, Expected: "bool", Actual: fmt.Sprintf("%T", raw)}
	}
	return nil
}

// decodeDuration accepts a duration, a duration string, or a number of
// seconds.
func decodeDuration(data map[string]any, path string, dst *time.Duration) error {
	raw, ok := loader.Lookup(data, path)
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case time.Duration:
		*dst = v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return &TypeError{Path: path, Expected: "duration", Actual: "string"}
		}
		*dst = d
	case int:
		*dst = time.Duration(v) * time.Second
	case int64:
		*dst = time.Duration(v) * time.Second
	case float64:
		*dst = time.Duration(v * float64(time.Second))
	default:
		return &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("%T", raw)}
	}
	return nil
}
