// Package collect finds the files to analyze. It walks the requested
// paths, composing a compiled configuration node per directory, and keeps
// the source files admitted by the global include/exclude scope.
package collect

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/config/compiled"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
)

// DefaultPatterns select the files analyzed when walking a directory.
var DefaultPatterns = []string{
	"**/*.rb",
	"**/*.rake",
	"**/*.gemspec",
	"**/Gemfile",
	"**/Rakefile",
}

// Config configures a Collector.
type Config struct {
	Compiler *compiled.Compiler
	// Sidecar, when set, replaces compiled configuration for the
	// global-scope check.
	Sidecar *sidecar.Index
	// Patterns overrides DefaultPatterns.
	Patterns []string
	Logger   *slog.Logger
}

// Collector finds target files.
type Collector struct {
	compiler *compiled.Compiler
	sidecar  *sidecar.Index
	patterns []string
	logger   *slog.Logger
}

// New creates a collector.
func New(cfg Config) *Collector {
	c := &Collector{
		compiler: cfg.Compiler,
		sidecar:  cfg.Sidecar,
		patterns: cfg.Patterns,
		logger:   cfg.Logger,
	}
	if len(c.patterns) == 0 {
		c.patterns = DefaultPatterns
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Collect returns the absolute, sorted and de-duplicated target files for
// paths. Files named explicitly are always kept; files found by walking a
// directory must match a target pattern and pass the global scope of their
// directory's configuration. Hidden, vendored and generated directories
// are not descended into.
func (c *Collector) Collect(ctx context.Context, paths []string) ([]string, error) {
	w := &walk{c: c, ctx: ctx, nodes: make(map[string]*compiled.Node)}
	defer w.release()

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("collect %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, &config.IOError{Path: abs, Err: err}
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		files, err := w.dir(abs)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}

	slices.Sort(out)
	c.logger.Debug("collected files", "paths", len(paths), "files", len(out))
	return out, nil
}

// walk holds the per-directory nodes of one Collect call.
type walk struct {
	c     *Collector
	ctx   context.Context
	nodes map[string]*compiled.Node
}

func (w *walk) dir(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && config.IsIgnoredDir(d.Name()) {
				return filepath.SkipDir
			}
			return w.enter(path, root)
		}
		if !d.Type().IsRegular() || !w.c.matches(path, root) {
			return nil
		}
		if w.allows(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", root, err)
	}
	return files, nil
}

// enter compiles the node for dir: full discovery for the walk root,
// composition with the parent directory's node below it.
func (w *walk) enter(dir, root string) error {
	if w.c.sidecar != nil {
		return nil
	}
	if _, ok := w.nodes[dir]; ok {
		return nil
	}
	var parent *compiled.Node
	if dir != root {
		parent = w.nodes[filepath.Dir(dir)]
	}
	n, err := w.c.compiler.Compile(dir, parent)
	if err != nil {
		return err
	}
	w.nodes[dir] = n
	return nil
}

func (w *walk) allows(path string) bool {
	if w.c.sidecar != nil {
		return w.c.sidecar.Allows(path)
	}
	n := w.nodes[filepath.Dir(path)]
	if n == nil {
		return true
	}
	if !n.Effective().AllowsFile(path) {
		w.c.logger.Debug("excluded by configuration", "path", path, "config", n.Nearest().Path)
		return false
	}
	return true
}

func (w *walk) release() {
	for dir, n := range w.nodes {
		n.Release()
		delete(w.nodes, dir)
	}
}

// matches reports whether path, relative to root, matches a target pattern.
func (c *Collector) matches(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range c.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
