package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/liquers/liquers-go/internal/logging"
)

// Watcher observes a store's root directory and invokes a callback with the
// key of every externally modified or removed entry. The callback runs on
// the watcher's goroutine and must return quickly.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *logging.Logger

	mu       sync.Mutex
	onChange func(key string)
	stopCh   chan struct{}
	done     chan struct{}
	started  bool
}

// NewWatcher creates a watcher for the store. Call Start to begin watching.
func NewWatcher(s *Store, logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Watcher{
		store:   s,
		watcher: fw,
		logger:  logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// OnChange sets the callback invoked with the changed key.
// Must be called before Start.
func (w *Watcher) OnChange(cb func(key string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// Start begins watching the store root and every directory below it.
// fsnotify watches are not recursive, so existing subdirectories are added
// here and later ones as their create events arrive.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	err := filepath.Walk(w.store.Root(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go w.loop()
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("store watcher error", "error", err.Error())
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New subdirectories need their own watch to catch nested keys.
	if event.Op&fsnotify.Create != 0 {
		if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
			_ = w.watcher.Add(event.Name)
			return
		}
	}

	rel, err := filepath.Rel(w.store.Root(), event.Name)
	if err != nil {
		return
	}
	key := filepath.ToSlash(rel)

	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()

	w.logger.Debug("store key changed", "key", key, "op", event.Op.String())
	if cb != nil {
		cb(key)
	}
}

// Stop shuts the watcher down and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	close(w.stopCh)
	w.watcher.Close()
	<-w.done
}
