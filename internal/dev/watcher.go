package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/husk-build/husk/internal/errors"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeScript ChangeType = iota
	ChangeCSS
	ChangeHTML
	ChangeAsset
)

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files or directories to watch.
	Paths []string

	// Ignore patterns to skip (file globs or path segments).
	Ignore []string

	// Debounce is the quiet period before a burst of events is reported.
	Debounce time.Duration

	// Logger receives watcher diagnostics.
	Logger zerolog.Logger
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	".husk",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes using fsnotify and coalesces event
// bursts into one report per path.
type Watcher struct {
	config   WatcherConfig
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	config.Ignore = append(append([]string{}, DefaultIgnore...), config.Ignore...)

	return &Watcher{config: config}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching. It blocks until the context is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("E302").Wrap(err)
	}
	defer fw.Close()

	for _, path := range w.config.Paths {
		w.addRecursive(fw, path)
	}

	// pending coalesces events until the debounce window closes.
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.config.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need their own watch.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addRecursive(fw, event.Name)
					continue
				}
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.config.Debounce)
		case <-timer.C:
			w.report(pending)
			pending = make(map[string]struct{})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.config.Logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// addRecursive registers a path and all its non-ignored subdirectories.
func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) {
	info, err := os.Stat(root)
	if err != nil {
		return
	}
	if !info.IsDir() {
		if err := fw.Add(filepath.Dir(root)); err != nil {
			w.config.Logger.Warn().Err(err).Str("path", root).Msg("watch failed")
		}
		return
	}

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.config.Logger.Warn().Err(err).Str("path", path).Msg("watch failed")
		}
		return nil
	})
}

// report delivers coalesced changes, watched files only.
func (w *Watcher) report(pending map[string]struct{}) {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()
	if callback == nil || len(pending) == 0 {
		return
	}

	for path := range pending {
		// Event paths can be inside a watched parent but outside the
		// configured set (sibling files of single-file watches).
		if !w.covered(path) {
			continue
		}
		callback(Change{Path: path, Type: classifyChange(path)})
	}
}

// covered reports whether a path falls under one of the configured paths.
func (w *Watcher) covered(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range w.config.Paths {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if abs == absRoot {
			return true
		}
		if strings.HasPrefix(abs, absRoot+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}
		for _, segment := range strings.Split(normalized, "/") {
			if segment == pattern {
				return true
			}
		}
	}

	return false
}

// classifyChange determines the type of change based on file extension.
func classifyChange(path string) ChangeType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".ts", ".tsx", ".jsx":
		return ChangeScript
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	case ".html":
		return ChangeHTML
	default:
		return ChangeAsset
	}
}
