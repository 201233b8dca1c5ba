package live

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"touch-calibrator/internal/calibration"
)

// DefaultDebounce is how long the watcher waits after the last change to
// the artifact before reloading it.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads an Active calibration when its artifact changes on disk.
//
// The artifact's directory is watched rather than the file itself, because
// Store.Save replaces the file by renaming a temporary file over it.
type Watcher struct {
	active   *Active
	path     string
	debounce time.Duration

	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	done    chan struct{}
	started atomic.Bool
	once    sync.Once
}

// NewWatcher creates a watcher for the artifact at path. The directory is
// created if it does not exist yet.
func NewWatcher(active *Active, path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		active:   active,
		path:     path,
		debounce: debounce,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the watched artifact path.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	if w.started.CompareAndSwap(false, true) {
		go w.watchLoop()
	}
}

// Stop stops the watcher and waits for the goroutine to exit. It is safe to
// call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.once.Do(func() {
		close(w.stopCh)
		err = w.fsw.Close()
	})
	if w.started.Load() {
		<-w.done
	}
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	var pending <-chan time.Time
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				pending = time.After(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("live: watch error: %v", err)
		case <-pending:
			pending = nil
			if err := w.active.Reload(); err != nil {
				LogLoadError(w.path, err)
				continue
			}
			log.Printf("live: reloaded calibration from %s", w.path)
		}
	}
}

// LogLoadError logs why a calibration could not be loaded. A missing and a
// malformed artifact both leave the input path on its current calibration,
// but are reported differently.
func LogLoadError(path string, err error) {
	switch {
	case errors.Is(err, calibration.ErrNotFound):
		log.Printf("live: no calibration at %s, input is uncalibrated", path)
	case errors.Is(err, calibration.ErrParse):
		log.Printf("live: ignoring malformed calibration: %v", err)
	default:
		log.Printf("live: loading calibration failed: %v", err)
	}
}
