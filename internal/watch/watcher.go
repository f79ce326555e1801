// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"writon/internal/prefs"
)

// DefaultDelay batches the burst of events an editor produces on save
const DefaultDelay = 500 * time.Millisecond

// Handler is called with the watched path once changes settle
type Handler func(ctx context.Context, path string)

// Watcher calls a Handler whenever one file changes. It watches the parent
// directory so saves that replace the file by rename are still seen.
type Watcher struct {
	path     string
	handler  Handler
	log      *zap.Logger
	fsw      *fsnotify.Watcher
	debounce *prefs.Debouncer

	// Serializes handler runs; a slow run delays the next one
	runMu sync.Mutex
}

type Option func(*Watcher)

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithDelay sets the quiet window before the handler runs
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = prefs.NewDebouncer(d) }
}

// New starts watching path. Events are only delivered once Run is called.
func New(path string, handler Handler, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:     absPath,
		handler:  handler,
		log:      zap.NewNop(),
		debounce: prefs.NewDebouncer(DefaultDelay),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	w.fsw = fsw
	return w, nil
}

// Path is the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers change events until ctx is done, then releases the watcher.
// A pending handler call is dropped on shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.debounce.Cancel()
		if err := w.fsw.Close(); err != nil {
			w.log.Warn("close watcher", zap.Error(err))
		}
	}()

	w.log.Info("watching", zap.String("path", w.path))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		// Remove, Rename-away and Chmod leave nothing new to read
		return
	}

	w.log.Debug("change", zap.String("op", event.Op.String()))
	w.debounce.Call(func() {
		if ctx.Err() != nil {
			return
		}
		w.runMu.Lock()
		defer w.runMu.Unlock()
		w.handler(ctx, w.path)
	})
}
