package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches the configuration directory and reloads on change.
// It is inert unless the initial configuration enables hot reload.
type Watcher struct {
	loader    *Loader
	logger    *zap.Logger
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher seeded with initial.
func NewWatcher(initial *Config, loader *Loader, logger *zap.Logger, opts ...WatcherOption) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		loader:   loader,
		logger:   logger,
		debounce: DefaultDebounce,
		config:   initial,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if !initial.Features.EnableHotReload {
		close(w.doneCh)
		logger.Info("Configuration hot reloading disabled",
			zap.String("environment", string(initial.Environment)),
		)
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(loader.BasePath()); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.BasePath(), err)
	}
	w.fsWatcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("environment", string(initial.Environment)),
		zap.String("dir", loader.BasePath()),
	)
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer close(w.doneCh)
	defer w.fsWatcher.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}

			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	next, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Invalid configuration after reload, keeping previous", zap.Error(err))
		return
	}

	w.mu.Lock()
	prev := w.config
	if configsEqual(prev, next) {
		w.mu.Unlock()
		w.logger.Debug("Configuration unchanged after reload")
		return
	}
	w.config = next
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded",
		zap.Strings("changes", diff(prev, next)),
		zap.Int("callbacks", len(callbacks)),
	)

	for i, cb := range callbacks {
		w.runCallback(i, cb, next)
	}
}

func (w *Watcher) runCallback(idx int, cb func(*Config), cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Configuration callback panicked",
				zap.Int("callback_index", idx),
				zap.Any("panic", r),
			)
		}
	}()
	cb(cfg)
}

// OnChange registers a callback invoked with every new configuration.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.mu.Unlock()
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops watching and waits for the watch loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
}

func configsEqual(a, b *Config) bool {
	ac, bc := *a, *b
	ac.LoadedFrom, bc.LoadedFrom = nil, nil
	return reflect.DeepEqual(ac, bc)
}

func diff(old, cur *Config) []string {
	var changes []string
	add := func(name string, a, b any) {
		if !reflect.DeepEqual(a, b) {
			changes = append(changes, fmt.Sprintf("%s: %v -> %v", name, a, b))
		}
	}
	add("server", old.Server, cur.Server)
	add("analytics", old.Analytics, cur.Analytics)
	add("cache", old.Cache, cur.Cache)
	add("logging", old.Logging, cur.Logging)
	add("features", old.Features, cur.Features)
	add("events", old.Events, cur.Events)
	add("circuit_breaker", old.CircuitBreaker, cur.CircuitBreaker)
	return changes
}

func isConfigFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
