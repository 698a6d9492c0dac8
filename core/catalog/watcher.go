package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"catalog-cost/internal/logging"
)

// Watcher hot-reloads the catalog when files under the root change.
// Events are debounced so one save producing several writes triggers
// a single reload.
type Watcher struct {
	loader   *Loader
	onReload func(*Catalog)
	debounce time.Duration

	fs   *fsnotify.Watcher
	done chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher around loader. onReload receives every
// successfully reloaded snapshot; failed reloads keep the previous
// snapshot in place.
func NewWatcher(loader *Loader, onReload func(*Catalog)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		loader:   loader,
		onReload: onReload,
		debounce: 500 * time.Millisecond,
		fs:       fs,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the catalog root and its subdirectories
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.loader.root); err != nil {
		return err
	}
	go w.run()
	return nil
}

// Close stops the watcher. A pending debounced reload is dropped.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}

// addRecursive registers dir and every directory below it. fsnotify
// watches single directories only.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logging.Warn("catalog watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				logging.Warn("catalog watch add failed", zap.String("path", event.Name), zap.Error(err))
			}
			w.scheduleReload()
			return
		}
	}
	if !isCatalogFile(event.Name) {
		return
	}
	w.scheduleReload()
}

func isCatalogFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.done:
		return
	default:
	}

	cat, err := w.loader.Load()
	if err != nil {
		logging.Error("catalog reload failed", zap.Error(err))
		return
	}
	if w.onReload != nil {
		w.onReload(cat)
	}
}
