package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/marginalia/internal/debounce"
)

// DefaultReloadDelay coalesces bursts of write events from editors.
const DefaultReloadDelay = 100 * time.Millisecond

// ReloadFunc receives the reloaded configuration, or the load error.
type ReloadFunc func(Config, error)

// Watcher reloads a configuration file when it changes. The file's
// directory is watched so that editors replacing the file are seen.
type Watcher struct {
	mu sync.Mutex

	path   string
	fsw    *fsnotify.Watcher
	reload *debounce.Debouncer
	onLoad ReloadFunc
	env    LookupFunc
	logger *slog.Logger

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*watcherSettings)

type watcherSettings struct {
	delay  time.Duration
	env    LookupFunc
	logger *slog.Logger
	opts   []debounce.Option
}

// WithReloadDelay sets the quiet period before reloading.
func WithReloadDelay(d time.Duration, opts ...debounce.Option) WatcherOption {
	return func(s *watcherSettings) {
		s.delay = d
		s.opts = opts
	}
}

// WithEnv applies environment overrides to every reload.
func WithEnv(lookup LookupFunc) WatcherOption {
	return func(s *watcherSettings) {
		s.env = lookup
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(s *watcherSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewWatcher starts watching path. onLoad runs on a background goroutine
// after each change.
func NewWatcher(path string, onLoad ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	s := watcherSettings{delay: DefaultReloadDelay, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&s)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		onLoad:  onLoad,
		env:     s.env,
		logger:  s.logger,
		closeCh: make(chan struct{}),
	}
	w.reload = debounce.New(s.delay, w.load, s.opts...)

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.reload.Call()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) load() {
	cfg, err := Load(w.path)
	if err == nil && w.env != nil {
		if err = cfg.ApplyEnv(w.env); err == nil {
			err = cfg.Validate()
		}
	}
	if err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
	} else {
		w.logger.Info("config reloaded", "path", w.path)
	}
	if w.onLoad != nil {
		w.onLoad(cfg, err)
	}
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops watching and cancels a pending reload.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.closedWg.Wait()
	w.reload.Cancel()
	return w.fsw.Close()
}
