package lua

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dshills/linkedit/internal/vfs"
	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one DoString, DoFile or Eval call.
const DefaultExecutionTimeout = 5 * time.Second

// State wraps gopher-lua with a sandbox and execution timeout.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes calls
// made through State; LuaState bypasses it.
type State struct {
	L *lua.LState

	mu sync.Mutex

	executionTimeout time.Duration
	out              io.Writer
	fs               vfs.FS

	sandbox *Sandbox
	bridge  *Bridge

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the execution timeout for Lua calls.
// The timeout is enforced through the LState context, so it interrupts
// pure Lua loops as well as calls into Go.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d > 0 {
			s.executionTimeout = d
		}
	}
}

// WithOutput sets where print writes. The default discards output.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.out = w
	}
}

// WithFileSystem sets the file system DoFile reads from.
func WithFileSystem(fsys vfs.FS) StateOption {
	return func(s *State) {
		s.fs = fsys
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{
		executionTimeout: DefaultExecutionTimeout,
		out:              io.Discard,
		fs:               vfs.NewOSFS(),
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true, // We'll open selectively
	})
	state.L = L
	openSafeLibraries(L)

	state.sandbox = NewSandbox(L, state.out)
	state.sandbox.Install()
	state.bridge = NewBridge(L)

	return state
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Note: These are intentionally NOT opened:
	// - io (file system access)
	// - os (system calls, execute)
	// - debug (can bypass sandbox)
	// - package (can load arbitrary modules)
}

// DoString executes a Lua string.
func (s *State) DoString(ctx context.Context, code string) error {
	_, err := s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.LoadString(code)
	}, 0)
	return err
}

// DoFile executes a Lua file read through the state's file system.
func (s *State) DoFile(ctx context.Context, path string) error {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.Load(bytes.NewReader(data), path)
	}, 0)
	return err
}

// Eval executes a Lua chunk and returns its results converted to Go.
func (s *State) Eval(ctx context.Context, code string) ([]any, error) {
	return s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.LoadString(code)
	}, lua.MultRet)
}

// run compiles a chunk and calls it with the execution timeout applied.
func (s *State) run(ctx context.Context, compile func() (*lua.LFunction, error), nret int) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, err := compile()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.executionTimeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	err = s.doWithRecovery(func() error {
		s.L.Push(fn)
		return s.L.PCall(0, nret, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrExecutionTimeout, s.executionTimeout)
		}
		return nil, err
	}

	n := s.L.GetTop() - top
	results := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, s.bridge.ToGoValue(s.L.Get(top+i)))
	}
	s.L.SetTop(top)
	return results, nil
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// SetExecutionTimeout changes the limit for subsequent calls.
func (s *State) SetExecutionTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.executionTimeout = d
	}
}

// ExecutionTimeout returns the current execution limit.
func (s *State) ExecutionTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executionTimeout
}

// GetGlobal returns a global variable converted to Go.
func (s *State) GetGlobal(name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.bridge.ToGoValue(s.L.GetGlobal(name))
}

// RegisterModule registers a global table with the given functions.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
}

// LuaState returns the underlying gopher-lua state.
//
// WARNING: Direct access to LState bypasses the mutex and the timeout.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.L.Close()
	s.closed = true
	return nil
}
