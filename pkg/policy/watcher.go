package policy

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher discovers newly published policy set files in a directory and adds
// them to the registry. It only ever publishes new versions; a file rewritten
// in place with a changed version body is rejected by the registry's
// immutability check and logged.
type Watcher struct {
	registry *Registry
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewWatcher creates a watcher for dir feeding the registry.
func NewWatcher(registry *Registry, dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &LoadError{Source: dir, Message: "failed to create fsnotify watcher", Cause: err}
	}
	return &Watcher{
		registry: registry,
		dir:      dir,
		watcher:  fsw,
		debounce: 250 * time.Millisecond,
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "policy.watcher"),
	}, nil
}

// Start begins watching. It returns once the watch is registered; events are
// processed on a background goroutine until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return &LoadError{Source: w.dir, Message: "failed to watch policy directory", Cause: err}
	}
	w.running = true

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("policy directory watch started", "dir", w.dir)
	return nil
}

// Stop stops the watcher and waits for in-flight event handling.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	// Debounce per path: editors emit several writes for one save.
	pending := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcess(event) {
				continue
			}
			path := event.Name
			if timer, ok := pending[path]; ok {
				timer.Stop()
			}
			pending[path] = time.AfterFunc(w.debounce, func() {
				w.loadAndPublish(path)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("policy watch error", "dir", w.dir, "error", err)
		}
	}
}

// shouldProcess filters events down to content-bearing changes on policy
// files.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	return isPolicyFile(filepath.Base(event.Name))
}

func (w *Watcher) loadAndPublish(path string) {
	set, err := LoadFile(path)
	if err != nil {
		w.logger.Error("discovered policy set failed to load", "path", path, "error", err)
		return
	}
	if err := w.registry.Publish(set); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			w.logger.Error("in-place mutation of a published policy version rejected",
				"path", path,
				"version", set.Version,
			)
			return
		}
		w.logger.Error("failed to publish discovered policy set", "path", path, "error", err)
		return
	}
	w.logger.Info("policy set discovered and published",
		"path", path,
		"set_id", set.SetID,
		"version", set.Version,
	)
}
