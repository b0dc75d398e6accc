// Package watch rebuilds when source files or the configuration change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is unset.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc runs one build. Errors are logged; watching continues.
type RebuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Dirs are watched recursively, including directories created later.
	Dirs []string
	// Files are watched through their parent directory.
	Files []string
	// Ignore holds directories whose events never trigger a rebuild.
	Ignore   []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher coalesces filesystem events into serialized rebuilds.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]struct{}
	trees    map[string]struct{}
	ignore   []string
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
	req   chan struct{}
}

// New registers the directories and files in opts. Nothing is reported until
// Run is called.
func New(opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		files:    make(map[string]struct{}),
		trees:    make(map[string]struct{}),
		debounce: opts.Debounce,
		logger:   opts.Logger,
		req:      make(chan struct{}, 1),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	for _, dir := range opts.Ignore {
		abs, err := filepath.Abs(dir)
		if err == nil {
			w.ignore = append(w.ignore, abs)
		}
	}

	for _, dir := range opts.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolve watch directory %s: %w", dir, err)
		}
		if err := w.addRecursive(abs); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	for _, file := range opts.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("resolve watch file %s: %w", file, err)
		}
		// Editors replace files on save; the directory watch survives that.
		if err := fw.Add(filepath.Dir(abs)); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
		}
		w.files[abs] = struct{}{}
	}
	return w, nil
}

// Run blocks until ctx is canceled, calling rebuild once per burst of changes.
// Rebuilds never overlap. The underlying watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		if err := w.fs.Close(); err != nil {
			w.logger.Error("Error closing file watcher", "error", err)
		}
	}()

	// Rebuilds run on their own goroutine so events keep draining meanwhile.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.req:
				w.logger.Info("Change detected, rebuilding")
				if err := rebuild(ctx); err != nil && ctx.Err() == nil {
					w.logger.Error("Rebuild failed", "error", err)
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				<-done
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				<-done
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addRecursive(ev.Name)
		}
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("File change detected", "path", ev.Name, "op", ev.Op.String())
	w.trigger()
}

func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.req <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) ignored(path string) bool {
	if _, ok := w.files[path]; ok {
		return false
	}
	for _, dir := range w.ignore {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	// Siblings of a watched file only show up because its directory is watched.
	w.mu.Lock()
	_, inTree := w.trees[filepath.Dir(path)]
	w.mu.Unlock()
	if !inTree {
		return true
	}
	return ignoredName(filepath.Base(path))
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		for _, dir := range w.ignore {
			if path == dir {
				return filepath.SkipDir
			}
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("watch add failed", "dir", path, "error", err)
			return nil
		}
		w.mu.Lock()
		w.trees[path] = struct{}{}
		w.mu.Unlock()
		return nil
	})
}

// ignoredName reports hidden files, editor swap files and OS litter.
func ignoredName(base string) bool {
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
