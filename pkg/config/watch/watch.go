// Package watch reloads the configuration file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/itohio/kvmswitch/pkg/config"
)

// DefaultDebounce is the quiet period after the last change before the file
// is reloaded.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a configuration file and notifies handlers with a freshly
// loaded configuration after it changed.
type Watcher struct {
	path     string
	debounce time.Duration

	mu       sync.RWMutex
	handlers []func(*config.Config)
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a Watcher for path. A zero debounce selects DefaultDebounce.
func New(path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnReload registers a handler and returns a function removing it.
func (w *Watcher) OnReload(handler func(*config.Config)) func() {
	w.mu.Lock()
	w.handlers = append(w.handlers, handler)
	idx := len(w.handlers) - 1
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.handlers) {
			w.handlers[idx] = nil
		}
	}
}

// Start begins watching. The directory of the file is watched so that
// editors replacing the file are noticed as well.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.watcher = watcher
	w.done = make(chan struct{})
	go w.watch()
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() error {
	w.cancel()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) watch() {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		log.Printf("Failed to reload configuration: %v", err)
		return
	}

	w.mu.RLock()
	handlers := make([]func(*config.Config), 0, len(w.handlers))
	for _, h := range w.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	w.mu.RUnlock()

	log.Printf("Configuration %s reloaded", w.path)
	for _, h := range handlers {
		h(cfg)
	}
}
