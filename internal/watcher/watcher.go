// Package watcher reports changes made to the notes file, including edits by
// other processes.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change kinds passed to EventCallback.
const (
	KindWritten = "written"
	KindRemoved = "removed"
)

// DefaultDebounce coalesces bursts such as temp-file rename plus chmod.
const DefaultDebounce = 100 * time.Millisecond

// EventCallback is called once per debounced burst of changes.
type EventCallback func(kind string)

// Watch watches the directory holding path and calls cb after the file is
// created, written, renamed over or removed. It returns when ctx is
// cancelled. The directory is watched rather than the file because atomic
// rewrites replace the inode.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, cb EventCallback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("path", target))

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending string
	)
	schedule := func(kind string) {
		pending = kind
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			timer = nil
			timerCh = nil
			logger.Debug("watcher: notes file changed", slog.String("kind", pending))
			if cb != nil {
				cb(pending)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule(KindWritten)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				schedule(KindRemoved)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
