package bootstrap

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadSettle lets a burst of events from one snapshot replace collapse into one reload.
const reloadSettle = 200 * time.Millisecond

// WatchIndex reloads the snapshot when another process replaces it. Filesystem events trigger
// a reload promptly; the interval poll covers filesystems without notifications. interval <= 0
// disables polling, and the watch stops entirely when ctx is done.
func (a *App) WatchIndex(ctx context.Context, interval time.Duration) {
	var poll <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		poll = ticker.C
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = watcher.Add(filepath.Dir(a.snapshotPath))
	}
	if err != nil {
		a.logger.Warn("index_watch_unavailable", "error", err, "poll_interval", interval.String())
	} else {
		defer watcher.Close()
		events, errs = watcher.Events, watcher.Errors
	}
	if poll == nil && events == nil {
		return
	}

	settle := time.NewTimer(reloadSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if a.touchesSnapshot(ev) {
				settle.Reset(reloadSettle)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn("index_watch_error", "error", err)
		case <-settle.C:
			a.reload(ctx)
		case <-poll:
			a.reload(ctx)
		}
	}
}

func (a *App) touchesSnapshot(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(a.snapshotPath) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)
}

func (a *App) reload(ctx context.Context) {
	if _, err := a.ReloadIndex(ctx); err != nil {
		a.logger.Warn("index_reload_failed", "error", err)
	}
}
