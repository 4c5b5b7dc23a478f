// Package app wires the engine, persistence, scripting and configuration
// into an interactive editing session.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dshills/linkedit/internal/config"
	"github.com/dshills/linkedit/internal/config/watcher"
	"github.com/dshills/linkedit/internal/engine"
	"github.com/dshills/linkedit/internal/filestore"
	"github.com/dshills/linkedit/internal/plugin/lua"
	"github.com/dshills/linkedit/internal/vfs"
	"github.com/google/uuid"
)

// Banner is printed when an interactive session starts.
const Banner = "linkedit - linked list text editor\nType 'help' for a list of commands"

// Session owns one document and everything needed to edit it from a
// command stream. Commands run on the goroutine that calls Execute or Run.
type Session struct {
	id     uuid.UUID
	engine *engine.Engine
	store  *filestore.Store
	lua    *lua.State
	fs     vfs.FS
	out    io.Writer
	logger *Logger

	mu          sync.Mutex
	cfg         *config.Config
	interactive bool

	watcher *watcher.Watcher
	reloads chan *config.Config
}

// Option configures a Session.
type Option func(*Session)

// WithOutput sets where command output is written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithLogger sets the session logger. Defaults to a null logger.
func WithLogger(l *Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithConfig sets the initial configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Session) {
		s.cfg = cfg
	}
}

// WithFileSystem sets the file system used by save, load and source.
func WithFileSystem(fsys vfs.FS) Option {
	return func(s *Session) {
		s.fs = fsys
	}
}

// WithInteractive enables the banner and prompt.
func WithInteractive(interactive bool) Option {
	return func(s *Session) {
		s.interactive = interactive
	}
}

// NewSession creates a session with an empty document.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:      uuid.New(),
		fs:      vfs.NewOSFS(),
		out:     os.Stdout,
		cfg:     config.Default(),
		reloads: make(chan *config.Config, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = NewNullLogger()
	}
	s.logger = s.logger.WithField("session", s.id.String())

	s.engine = engine.New(engine.WithMaxUndoEntries(s.cfg.Editor.MaxUndo))
	s.store = filestore.New(s.fs)
	s.lua = lua.NewState(
		lua.WithExecutionTimeout(s.cfg.Script.Timeout),
		lua.WithOutput(s.out),
		lua.WithFileSystem(s.fs),
	)
	lua.OpenBuffer(s.lua, s.engine)

	s.logger.Debug("session started")
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Engine returns the session's buffer engine.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Config returns the active configuration.
func (s *Session) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// ApplyConfig switches to cfg. The undo depth, prompt, log level and
// script timeout take effect for the next command.
func (s *Session) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.engine.SetMaxUndoEntries(cfg.Editor.MaxUndo)
	s.lua.SetExecutionTimeout(cfg.Script.Timeout)
	s.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))
	s.logger.Info("configuration applied (maxUndo=%d)", cfg.Editor.MaxUndo)
}

// WatchConfig reloads the configuration whenever path changes. Reloaded
// configs are applied by Run between commands; load failures are logged
// and the current config is kept.
func (s *Session) WatchConfig(path string, load func() (*config.Config, error)) error {
	w, err := watcher.New()
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return err
	}

	log := s.logger.WithComponent("config")
	w.OnChange(func(ev watcher.Event) {
		cfg, err := load()
		if err != nil {
			log.Warn("reload after %s of %s failed: %v", ev.Op, ev.Path, err)
			return
		}
		s.offerReload(cfg)
	})
	w.Start()

	s.watcher = w
	return nil
}

// offerReload queues cfg for Run, replacing any config not yet applied.
// It never blocks, so a handler firing after Run has returned is dropped.
func (s *Session) offerReload(cfg *config.Config) {
	select {
	case <-s.reloads:
	default:
	}
	select {
	case s.reloads <- cfg:
	default:
	}
}

// Reloads delivers configurations produced by WatchConfig.
func (s *Session) Reloads() <-chan *config.Config {
	return s.reloads
}

// Load replaces the document with the contents of name. Unlike the load
// command, name is used as given, so it may contain spaces.
func (s *Session) Load(name string) error {
	src := s.store.Source(name)
	if err := s.engine.Load(src); err != nil {
		return NewOperationError("load", name, err)
	}
	s.logger.Info("loaded %s (%s)", name, src.Encoding())
	s.println("Document loaded successfully from " + name)
	return nil
}

// Execute runs one command line. Command failures are printed, not
// returned; the only error is ErrQuit.
func (s *Session) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name := strings.ToLower(fields[0])
	cmd, ok := commands[name]
	if !ok {
		s.println("Unknown command")
		return nil
	}

	rest := strings.TrimSpace(strings.TrimSpace(line)[len(fields[0]):])
	s.logger.Debug("command %s", name)

	err := cmd.run(ctx, s, fields[1:], rest)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrQuit):
		return ErrQuit
	default:
		s.logger.Debug("command %s failed: %v", name, err)
		s.println(Message(err))
		return nil
	}
}

// Run reads commands from in until quit, end of input or ctx is done.
// Reloaded configs from WatchConfig are applied between commands.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		readErr <- scanLines(in, lines, done)
	}()

	if s.interactive {
		s.println(Banner)
	}
	s.prompt()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cfg := <-s.reloads:
			s.ApplyConfig(cfg)

		case err := <-readErr:
			if s.interactive {
				s.println()
			}
			return err

		case line := <-lines:
			if err := s.Execute(ctx, line); errors.Is(err, ErrQuit) {
				return nil
			}
			s.prompt()
		}
	}
}

// scanLines sends each line of in until EOF or done is closed.
func scanLines(in io.Reader, lines chan<- string, done <-chan struct{}) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-done:
			return nil
		}
	}
	return sc.Err()
}

func (s *Session) prompt() {
	if !s.interactive {
		return
	}
	s.mu.Lock()
	p := s.cfg.Editor.Prompt
	s.mu.Unlock()
	fmt.Fprint(s.out, p)
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

// Close stops the config watcher and releases the Lua state.
func (s *Session) Close() error {
	var err error
	if s.watcher != nil {
		err = s.watcher.Stop()
	}
	if cerr := s.lua.Close(); err == nil {
		err = cerr
	}
	s.logger.Debug("session closed")
	return err
}
