package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/config/merge"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

var errIsDirectory = errors.New("is a directory")

// Result is the outcome of one discovery call.
type Result struct {
	// Merged is the merged document, allocated from the caller's arena.
	Merged *document.Node
	// Sources lists every contributing file, root-most first, including
	// inherited parents.
	Sources []Source
	// Nearest is the file closest to the target (or the override file).
	Nearest Source
}

// Walker discovers the configuration chain for a path and merges it.
// It is safe for concurrent use as long as each call gets its own arena.
type Walker struct {
	resolver *Resolver
	rules    merge.RuleLookup
	logger   *slog.Logger
}

// NewWalker creates a walker. rules is used to normalize nested rule
// sections; resolver may be nil, in which case inherit_from is resolved
// without caching.
func NewWalker(resolver *Resolver, rules merge.RuleLookup, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if resolver == nil {
		resolver = NewResolver(nil, logger)
	}
	return &Walker{resolver: resolver, rules: rules, logger: logger}
}

// Discover finds the configuration applying to target, a file or a
// directory. With a non-empty override only that file is loaded. Otherwise
// directories are searched upward from target until a file declares
// "root: true" or the filesystem root is reached.
//
// A nil Result with a nil error means no configuration was found.
func (w *Walker) Discover(target, override string, arena *document.Arena) (*Result, error) {
	var files []*RawConfig

	if override != "" {
		raw, err := LoadRaw(override)
		if err != nil {
			return nil, err
		}
		files = append(files, raw)
	} else {
		dir, err := StartDir(target)
		if err != nil {
			return nil, err
		}
		for {
			if path, ok := FindConfigFile(dir); ok {
				raw, err := LoadRaw(path)
				if err != nil {
					releaseAll(files)
					return nil, err
				}
				files = append(files, raw)
				if raw.IsRoot() {
					w.logger.Debug("root marker stops discovery", "path", path)
					break
				}
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if len(files) == 0 {
		return nil, nil
	}
	defer releaseAll(files)

	nearest := files[0].Source()
	slices.Reverse(files)
	return w.build(files, nearest, arena)
}

// DiscoverLocal loads only dir's own configuration file and its
// inherit_from chain. Used when composing with an already-compiled parent.
func (w *Walker) DiscoverLocal(dir string, arena *document.Arena) (*Result, error) {
	path, ok := FindConfigFile(dir)
	if !ok {
		return nil, nil
	}
	raw, err := LoadRaw(path)
	if err != nil {
		return nil, err
	}
	defer raw.Release()
	return w.build([]*RawConfig{raw}, raw.Source(), arena)
}

// build expands each file's ancestors in front of it, normalizes every
// document and merges them root-most first. Files already present earlier
// in the chain are skipped.
func (w *Walker) build(files []*RawConfig, nearest Source, arena *document.Arena) (*Result, error) {
	var (
		docs    []*document.Node
		sources []Source
		seen    = make(map[string]bool)
	)

	add := func(c *RawConfig) error {
		if seen[c.Canonical()] {
			return nil
		}
		seen[c.Canonical()] = true
		doc, err := merge.Normalize(arena, c.Document(), w.rules)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Path(), err)
		}
		docs = append(docs, doc)
		sources = append(sources, c.Source())
		return nil
	}

	for _, f := range files {
		parents, err := w.resolver.Resolve(f)
		if err != nil {
			return nil, fmt.Errorf("resolving inherit_from of %s: %w", f.Path(), err)
		}
		for _, p := range parents {
			if err == nil {
				err = add(p)
			}
			p.Release()
		}
		if err != nil {
			return nil, err
		}
		if err := add(f); err != nil {
			return nil, err
		}
	}

	merged, err := merge.Merge(arena, docs...)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("discovered configuration", "nearest", nearest.Path, "sources", len(sources))
	return &Result{Merged: merged, Sources: sources, Nearest: nearest}, nil
}

// FindConfigFile returns the configuration file in dir, preferring
// .rubocop.yml over rubocop.yml.
func FindConfigFile(dir string) (string, bool) {
	for _, name := range config.FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// StartDir returns the absolute directory discovery starts from: target
// itself when it is a directory, otherwise its parent.
func StartDir(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", &config.IOError{Path: target, Err: err}
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}
