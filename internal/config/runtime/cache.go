// Package runtime holds the per-run table of compiled configuration nodes,
// keyed by start directory.
//
// The cache has two phases that must not overlap. Warm compiles every
// distinct directory of a file list with a bounded worker pool. Lookup is
// read-only and never compiles: a missing or stale entry is a miss.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
	"sync"

	"github.com/qraqras/leukocyte-sub000/internal/config/compiled"
	"github.com/qraqras/leukocyte-sub000/internal/config/discovery"
	"golang.org/x/sync/errgroup"
)

// Config configures a Cache.
type Config struct {
	Compiler *compiled.Compiler
	// Workers bounds concurrent compilation during Warm. Defaults to the
	// number of CPUs.
	Workers int
	Logger  *slog.Logger
}

// Cache maps start directories to compiled nodes. It holds one reference
// on every stored node.
type Cache struct {
	compiler *compiled.Compiler
	workers  int
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]*compiled.Node
}

// New creates an empty cache.
func New(cfg Config) *Cache {
	workers := cfg.Workers
	if workers <= 0 {
		workers = goruntime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		compiler: cfg.Compiler,
		workers:  workers,
		logger:   logger,
		entries:  make(map[string]*compiled.Node),
	}
}

// Warm compiles a node for every distinct start directory of files.
// The first fatal error cancels the remaining work and is returned.
func (c *Cache) Warm(ctx context.Context, files []string) error {
	dirs, err := startDirs(files)
	if err != nil {
		return err
	}
	c.logger.Debug("warming config cache", "files", len(files), "dirs", len(dirs), "workers", c.workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := c.load(dir)
			if err != nil {
				return err
			}
			n.Release()
			return nil
		})
	}
	return g.Wait()
}

// Lookup returns the node for the start directory of path, with a
// reference owned by the caller, or nil when the directory was not warmed
// or any of its configuration files changed since.
func (c *Cache) Lookup(path string) *compiled.Node {
	dir, err := discovery.StartDir(path)
	if err != nil {
		return nil
	}
	return c.fresh(dir)
}

// Resolve is Lookup that compiles and stores the node on a miss. It must
// not be used while workers rely on read-only lookups.
func (c *Cache) Resolve(path string) (*compiled.Node, error) {
	dir, err := discovery.StartDir(path)
	if err != nil {
		return nil, err
	}
	return c.load(dir)
}

func (c *Cache) fresh(dir string) *compiled.Node {
	c.mu.RLock()
	n := c.entries[dir]
	if n != nil {
		n.Ref()
	}
	c.mu.RUnlock()

	if n == nil {
		return nil
	}
	if n.Stale() {
		c.logger.Debug("stale config cache entry", "dir", dir)
		n.Release()
		return nil
	}
	return n
}

// load returns the fresh node for dir with a reference owned by the
// caller, compiling and storing it when absent or stale.
func (c *Cache) load(dir string) (*compiled.Node, error) {
	if n := c.fresh(dir); n != nil {
		return n, nil
	}

	n, err := c.compiler.Compile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("warming %s: %w", dir, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur := c.entries[dir]; cur != nil {
		if !cur.Stale() {
			// another worker got there first
			n.Release()
			return cur.Ref(), nil
		}
		cur.Release()
	}
	c.entries[dir] = n
	return n.Ref(), nil
}

// Invalidate drops the entries for the given directories.
func (c *Cache) Invalidate(dirs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, dir := range dirs {
		if n, ok := c.entries[dir]; ok {
			delete(c.entries, dir)
			n.Release()
		}
	}
}

// InvalidateTree drops every entry for one of dirs or a directory below
// it and returns the affected directories. A configuration file created in
// a directory changes the result for everything beneath it even though no
// cached node depended on it.
func (c *Cache) InvalidateTree(dirs ...string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped []string
	for dir, n := range c.entries {
		if !slices.ContainsFunc(dirs, func(root string) bool { return within(dir, root) }) {
			continue
		}
		delete(c.entries, dir)
		n.Release()
		dropped = append(dropped, dir)
	}
	return dropped
}

// within reports whether dir is root or lies below it.
func within(dir, root string) bool {
	rel, err := filepath.Rel(root, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// InvalidateStale drops every entry whose configuration files changed and
// returns the affected directories.
func (c *Cache) InvalidateStale() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped []string
	for dir, n := range c.entries {
		if n.Stale() {
			delete(c.entries, dir)
			n.Release()
			dropped = append(dropped, dir)
		}
	}
	return dropped
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for dir, n := range c.entries {
		delete(c.entries, dir)
		n.Release()
	}
}

// Len returns the number of stored nodes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// startDirs returns the distinct start directories of files, in first-seen order.
func startDirs(files []string) ([]string, error) {
	seen := make(map[string]bool, len(files))
	var dirs []string
	for _, f := range files {
		dir, err := discovery.StartDir(f)
		if err != nil {
			return nil, err
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}
