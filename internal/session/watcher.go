package session

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher converges the in-memory store when another process touches the
// session cache file: a CLI logout while the TUI runs, or the api client
// evicting the cache after a 401.
type Watcher struct {
	fs     *fsnotify.Watcher
	store  *Store
	logger *zap.Logger
	done   chan struct{}
}

// WatchCache starts watching the store's cache directory. Close releases
// the watch.
func WatchCache(store *Store, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory, not the file: the file is replaced by rename and
	// may not exist yet.
	if err := fs.Add(store.cache.dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", store.cache.dir, err)
	}

	w := &Watcher{fs: fs, store: store, logger: logger, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	target := w.store.cache.SessionPath()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Name != target {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				w.logger.Debug("session cache evicted externally")
				w.store.dropExternal()
			case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
				u, err := w.store.cache.Load()
				if err != nil {
					w.logger.Warn("ignoring unreadable session cache", zap.Error(err))
					continue
				}
				if u == nil {
					continue
				}
				w.logger.Debug("session cache updated externally", zap.String("user_id", u.ID))
				w.store.applyExternal(u)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("session cache watch error", zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
