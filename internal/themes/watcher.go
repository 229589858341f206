package themes

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the catalog's override directory and
// reloads the catalog when theme files change, until ctx is cancelled.
// Bursts of events (editors writing temp files, multi-file copies) are
// debounced into a single reload. It calls cb (if non-nil) after each
// successful reload. No-op when the catalog has no override directory.
func (c *Catalog) Watch(ctx context.Context, logger *slog.Logger, cb func()) error {
	if c.dir == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(c.dir); err != nil {
		return err
	}

	logger.Info("theme watcher: started", slog.String("dir", c.dir))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("theme watcher: stopped")
			return nil

		case <-reloadCh:
			if err := c.Reload(); err != nil {
				logger.Warn("theme watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			logger.Info("theme watcher: catalog reloaded")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".yaml") && !strings.HasSuffix(ev.Name, ".yml") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("theme watcher: error", slog.String("error", err.Error()))
		}
	}
}
