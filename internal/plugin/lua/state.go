package lua

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds every script execution.
const DefaultTimeout = time.Second

// State wraps a sandboxed gopher-lua state. gopher-lua states are not
// goroutine-safe; State serializes every call.
type State struct {
	mu      sync.Mutex
	L       *lua.LState
	timeout time.Duration
	logger  *slog.Logger
	closed  bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout bounds each DoString and Call.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger receives script print output.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a sandboxed state.
func NewState(opts ...Option) *State {
	s := &State{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	installSandbox(s.L, s.logger)
	return s
}

// DoString runs a chunk of Lua code.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStateClosed
	}
	return s.run(func() error {
		return s.L.DoString(code)
	})
}

// Call calls a global function and returns its results converted to Go.
func (s *State) Call(fn string, args ...any) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStateClosed
	}

	f, ok := s.L.GetGlobal(fn).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFunction, fn)
	}

	top := s.L.GetTop()
	err := s.run(func() error {
		s.L.Push(f)
		for _, a := range args {
			s.L.Push(ToLua(s.L, a))
		}
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, err
	}

	n := s.L.GetTop() - top
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = ToGo(s.L.Get(top + i + 1))
	}
	s.L.SetTop(top)
	return out, nil
}

// HasFunction reports whether a global function is defined.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	_, ok := s.L.GetGlobal(name).(*lua.LFunction)
	return ok
}

// run executes fn under the timeout with panic recovery. The caller holds mu.
func (s *State) run(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()

	err = fn()
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	}
	return err
}

// Close releases the state. It is safe to call more than once.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}
