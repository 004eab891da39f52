// Package watch re-runs a callback whenever an input file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/qrship/internal/ports"
)

// DefaultDebounceDelay is how long to wait after the last change event.
const DefaultDebounceDelay = 100 * time.Millisecond

// Config holds configuration options for a Watcher.
type Config struct {
	// Path is the file to watch
	Path string

	// DebounceDelay coalesces bursts of events from one save.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// Watcher watches the parent directory of a file so that editors which
// save by rename are still seen, and filters events by file name.
type Watcher struct {
	mu  sync.Mutex
	run sync.Mutex

	path     string
	delay    time.Duration
	onChange func(ctx context.Context) error
	logger   ports.Logger
	debounce *time.Timer
	wg       sync.WaitGroup
}

// New creates a Watcher that calls onChange once at start and after every
// debounced change.
func New(cfg Config, onChange func(ctx context.Context) error, logger ports.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	return &Watcher{
		path:     filepath.Clean(cfg.Path),
		delay:    cfg.DebounceDelay,
		onChange: onChange,
		logger:   logger,
	}
}

// Run blocks until ctx is canceled or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fire(ctx)
	defer w.stop()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("input watcher error", ports.Err(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.debounce = time.AfterFunc(w.delay, func() {
		defer w.wg.Done()
		w.fire(ctx)
	})
}

// stop cancels a pending run and waits for one in flight.
func (w *Watcher) stop() {
	w.mu.Lock()
	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) fire(ctx context.Context) {
	w.run.Lock()
	defer w.run.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.onChange(ctx); err != nil {
		// keep watching; the next save may fix the input
		w.logger.Error("re-render failed", ports.String("path", w.path), ports.Err(err))
		return
	}
	w.logger.Info("re-rendered input", ports.String("path", w.path))
}
