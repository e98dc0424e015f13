package sentinel

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emberos/emberctl/internal/config"
)

// Watcher observes the pending-update sentinel path. The sentinel is created
// and removed by the background updater only; this side never writes it.
type Watcher struct {
	// path is the sentinel location.
	path string
	// pollInterval is the fallback polling cadence when inotify events are
	// unavailable or lost.
	pollInterval time.Duration
}

// NewWatcher creates a watcher for the provided sentinel path.
func NewWatcher(path string, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = config.DefaultPollInterval
	}

	return &Watcher{
		path:         filepath.Clean(path),
		pollInterval: pollInterval,
	}
}

// Path returns the watched sentinel location.
func (w *Watcher) Path() string {
	return w.path
}

// Exists reports whether the sentinel is currently present.
func (w *Watcher) Exists() bool {
	_, err := os.Stat(w.path)

	return err == nil
}

// Wait blocks until the sentinel appears or the context is canceled.
// Detection is eventual, not low-latency: inotify events on the parent
// directory provide the fast path and a ticker poll backs them up, so a
// sentinel created before the watch was registered is still noticed.
func (w *Watcher) Wait(ctx context.Context) error {
	if w.Exists() {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() {
			_ = watcher.Close()
		}()

		// Watching the directory is more reliable than watching the file,
		// which does not exist yet. A missing directory just means we fall
		// back to polling.
		_ = watcher.Add(filepath.Dir(w.path))
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	if watcher != nil {
		events = watcher.Events
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}

			if event.Name == w.path && event.Op.Has(fsnotify.Create) {
				return nil
			}
		case <-ticker.C:
			if w.Exists() {
				return nil
			}
		}
	}
}
