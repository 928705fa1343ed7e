package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands the new
// config to registered callbacks. Invalid files are logged and skipped; the
// last good config stays current.
type Watcher struct {
	path   string
	logger *slog.Logger

	mu        sync.Mutex
	current   *Config
	callbacks []func(old, new *Config)
}

// NewWatcher loads path once and prepares a watcher for it.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, logger: logger, current: res.Config}, nil
}

// Config returns the current configuration.
func (w *Watcher) Config() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// OnChange registers a callback for config changes. Callbacks run on the
// watcher goroutine (or the Reload caller).
func (w *Watcher) OnChange(cb func(old, new *Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Reload re-reads the file and notifies callbacks.
func (w *Watcher) Reload() error {
	res, err := LoadFromPath(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	old := w.current
	w.current = res.Config
	callbacks := append([]func(old, new *Config){}, w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(old, res.Config)
	}
	return nil
}

// Run watches the directory containing the file until ctx is cancelled.
// Watching the directory catches editors that replace the file.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	w.logger.Debug("watching config", "path", w.path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := w.Reload(); err != nil {
					w.logger.Warn("config reload failed", "path", w.path, "error", err)
					return
				}
				w.logger.Info("config reloaded", "path", w.path)
			})

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
