// Package watcher observes the corpus file and emits change ticks used to
// drive lazy reloads.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of write events into one tick.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a single file for modification and emits one tick per
// debounced burst of changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
	events   chan struct{}
}

// New creates a watcher for the given file. The parent directory is
// watched rather than the file itself, so rename-and-replace writes (the
// common editor and atomic-write pattern) are still observed.
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		events:   make(chan struct{}, 1),
	}, nil
}

// Events returns the tick channel. At most one tick is buffered; a tick
// means "the file changed at least once since you last looked".
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Start consumes file system events until ctx is cancelled. It returns
// after closing the underlying watcher.
func (w *Watcher) Start(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time

	defer func() {
		_ = w.fsw.Close()
	}()

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			select {
			case w.events <- struct{}{}:
			default: // a tick is already queued
			}
			w.logger.Debug("corpus change detected", slog.String("path", w.path))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
