// Package watch re-validates an object directory whenever its files
// change, for iterating on writers that produce the on-disk format.
package watch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors an object tree and triggers re-validation
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	root      string
	logger    *zap.Logger
	onChange  func() error
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// New creates a watcher over the object tree rooted at root. onChange
// runs after changes settle for the debounce duration.
func New(root string, debounce time.Duration, logger *zap.Logger, onChange func() error) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:   fsw,
		debouncer: NewDebouncer(debounce),
		root:      root,
		logger:    logger,
		onChange:  onChange,
		stopChan:  make(chan struct{}),
	}

	w.debouncer.SetCallback(func(files []string) {
		if err := w.onChange(); err != nil {
			w.logger.Warn("re-validation failed", zap.Error(err))
		}
	})

	return w, nil
}

// Start begins watching the object tree
func (w *Watcher) Start() error {
	dirs, err := w.findDirectories()
	if err != nil {
		return fmt.Errorf("failed to find directories: %w", err)
	}

	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	w.wg.Add(1)
	go w.watch()

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	select {
	case <-w.stopChan:
		return nil
	default:
		close(w.stopChan)
	}

	w.wg.Wait()
	w.debouncer.Stop()
	return w.watcher.Close()
}

// watch is the main event loop
func (w *Watcher) watch() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Debug("file changed", zap.String("file", event.Name))
				w.debouncer.Add(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

// findDirectories walks the object tree collecting every directory,
// since fsnotify watches are not recursive.
func (w *Watcher) findDirectories() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// shouldIgnore filters editor droppings and hidden files
func (w *Watcher) shouldIgnore(path string) bool {
	baseName := filepath.Base(path)
	if strings.HasPrefix(baseName, ".") {
		return true
	}
	return strings.HasSuffix(baseName, "~") || strings.HasSuffix(baseName, ".swp")
}

// Debouncer collects file changes and triggers a callback after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopChan chan struct{}
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}
}

// SetCallback sets the function invoked once changes settle
func (d *Debouncer) SetCallback(fn func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = fn
}

// Add records a changed file and (re)arms the timer
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.fire)
}

// fire drains the collected files into the callback
func (d *Debouncer) fire() {
	d.mutex.Lock()
	files := make([]string, 0, len(d.files))
	for f := range d.files {
		files = append(files, f)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	select {
	case <-d.stopChan:
		return
	default:
	}

	if callback != nil && len(files) > 0 {
		callback(files)
	}
}

// Stop disarms the debouncer
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	select {
	case <-d.stopChan:
	default:
		close(d.stopChan)
	}
	if d.timer != nil {
		d.timer.Stop()
	}
}
