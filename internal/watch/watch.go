// Package watch reports changes to configuration files so that cached
// configuration can be dropped and rebuilt.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/qraqras/leukocyte-sub000/internal/config"
)

// DefaultDebounce is the quiet period before a batch of changes is reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches directory trees for configuration changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher. A zero debounce uses DefaultDebounce.
func New(debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{fs: w, debounce: debounce, logger: logger}, nil
}

// AddTree watches root and every directory below it, skipping ignored
// directories.
func (w *Watcher) AddTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && config.IsIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

// Add watches the given directories (not recursively).
func (w *Watcher) Add(dirs ...string) error {
	for _, d := range dirs {
		if err := w.fs.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// Run delivers batches of changed configuration files to onChange until
// ctx is done. onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	var (
		pending []string
		timer   *time.Timer
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !Relevant(event) {
				continue
			}
			w.logger.Debug("config file changed", "file", event.Name, "op", event.Op.String())
			if !slices.Contains(pending, event.Name) {
				pending = append(pending, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			batch := pending
			pending = nil
			fire = nil
			onChange(batch)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Relevant reports whether event concerns a configuration file: one of
// the recognized file names or any YAML file, which may be an
// inherit_from target.
func Relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if config.IsConfigFileName(name) {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return true
	}
	return false
}
