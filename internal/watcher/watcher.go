// Package watcher follows filesystem changes under the documentation root and
// invalidates cached content once a burst of changes settles.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

const defaultDebounce = 500 * time.Millisecond

// Invalidator drops cached state derived from the content tree.
type Invalidator interface {
	Invalidate()
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last change before a flush.
	Debounce time.Duration
	// OnChange runs after invalidation with the changed paths, relative to
	// the watched root and sorted.
	OnChange func(ctx context.Context, paths []string)
	Logger   *slog.Logger
}

// Watcher recursively watches a directory tree for markdown changes.
type Watcher struct {
	root   string
	target Invalidator
	opts   Options
	logger *slog.Logger
	fsw    *fsnotify.Watcher

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a watcher for root. It does not watch anything until Start.
func New(root string, target Invalidator, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve docs path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     abs,
		target:   target,
		opts:     opts,
		logger:   logger,
		fsw:      fsw,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start registers every non-hidden directory below root and begins
// processing events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return errors.New("watcher already started")
	}
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.started = true
	w.logger.Info("Starting content watcher", logfields.DocsDir(w.root))
	go w.loop(ctx)
	return nil
}

// Stop ends event processing and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.started = false
	w.mu.Unlock()

	if started {
		close(w.stopChan)
		<-w.done
	}
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close file watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.stopChan:
			timer.Stop()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			rel, relevant := w.handle(event)
			if !relevant {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.opts.Debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Content watcher error", logfields.Error(err))
		case <-timer.C:
			w.flush(ctx, pending)
			pending = map[string]struct{}{}
		}
	}
}

// handle reports whether the event affects documents, registering newly
// created directories on the way.
func (w *Watcher) handle(event fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if isHidden(part) {
			return "", false
		}
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(rel), logfields.Error(err))
			}
			return rel, true
		}
	}
	if strings.HasSuffix(rel, ".md") {
		return rel, true
	}
	// A removed or renamed directory takes its documents with it.
	if filepath.Ext(rel) == "" && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		return rel, true
	}
	return "", false
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	w.logger.Info("Content changed", logfields.Count(len(paths)))
	if w.target != nil {
		w.target.Invalidate()
	}
	if w.opts.OnChange != nil {
		w.opts.OnChange(ctx, paths)
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
