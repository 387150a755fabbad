// Package watcher re-runs a check whenever the watched load-order
// files change, debouncing event bursts from installers and mod
// managers.
package watcher

import (
	"context"
	"time"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for the file system
// to settle before firing.
const DefaultDebounce = 500 * time.Millisecond

// Watch watches the given paths (files or directories) and calls fn
// after each settled burst of changes. It blocks until ctx is
// cancelled.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn func()) error {
	logger := logging.GetLogger("watcher")
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot create file watcher")
	}
	defer w.Close()

	for _, path := range paths {
		if err := w.Add(path); err != nil {
			return errors.Wrapf(err, errors.ErrDataDirAccess, "cannot watch %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("watching")
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		case <-fire:
			fire = nil
			fn()
		}
	}
}

func relevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
