// Package config provides the configuration system for linkedit.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Overrides  │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← LINKEDIT_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← config.toml / config.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The layers are merged as generic maps and then decoded into the typed
// Config, which is validated before use.
//
// # Sub-packages
//
//   - loader: TOML and YAML file loading, environment variables, map merging
//   - watcher: fsnotify based file watching for live reload
//
// # Settings
//
//	editor.maxUndo       int       undo depth (default 100)
//	editor.prompt        string    REPL prompt (default ">> ")
//	logging.level        string    debug, info, warn or error (default info)
//	logging.file         string    log file path, stderr when empty
//	script.timeout       duration  Lua execution limit (default 5s)
//	session.watchConfig  bool      reload the config file on change
package config
