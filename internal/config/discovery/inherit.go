package discovery

import (
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qraqras/leukocyte-sub000/internal/config"
)

// Resolver expands inherit_from directives into an ordered ancestor list.
// It is safe for concurrent use.
type Resolver struct {
	cache  *InheritCache
	logger *slog.Logger
}

// NewResolver creates a resolver. cache may be nil to disable caching.
func NewResolver(cache *InheritCache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{cache: cache, logger: logger}
}

// Resolve returns base's ancestors, transitively, parents before children.
// base itself is not included. Each returned config carries a reference
// owned by the caller.
func (r *Resolver) Resolve(base *RawConfig) ([]*RawConfig, error) {
	if r.cache != nil {
		if parents, ok := r.cache.get(base); ok {
			r.logger.Debug("inherit cache hit", "path", base.Path(), "parents", len(parents))
			return parents, nil
		}
	}

	c := &chain{seen: make(map[string]bool)}
	if err := r.collect(base, []string{base.Canonical()}, c); err != nil {
		releaseAll(c.configs)
		return nil, err
	}

	if r.cache != nil {
		r.cache.put(base, c.configs)
	}
	return c.configs, nil
}

// chain accumulates resolved parents, deduplicated by canonical path.
type chain struct {
	configs []*RawConfig
	seen    map[string]bool
}

// collect walks base's inherit_from entries depth-first. stack holds the
// canonical paths of the current recursion path.
func (r *Resolver) collect(base *RawConfig, stack []string, acc *chain) error {
	for _, entry := range base.InheritFrom() {
		paths, err := r.expand(base.Dir(), entry)
		if err != nil {
			return err
		}
		for _, p := range paths {
			canon := canonicalPath(p)
			if slices.Contains(stack, canon) {
				return &config.CycleError{Chain: append(slices.Clone(stack), canon)}
			}
			if acc.seen[canon] {
				continue
			}

			parent, err := LoadRaw(p)
			if err != nil {
				return err
			}
			next := append(stack[:len(stack):len(stack)], canon)
			if err := r.collect(parent, next, acc); err != nil {
				parent.Release()
				return err
			}
			if acc.seen[canon] {
				parent.Release()
				continue
			}
			acc.seen[canon] = true
			acc.configs = append(acc.configs, parent)
		}
	}
	return nil
}

// expand turns one inherit_from entry into file paths. Relative entries
// resolve against dir. A glob that matches nothing is an error.
func (r *Resolver) expand(dir, entry string) ([]string, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, nil
	}
	if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
		r.logger.Warn("skipping remote inherit_from entry", "entry", entry, "dir", dir)
		return nil, nil
	}

	p := entry
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	if !hasGlobMeta(entry) {
		return []string{p}, nil
	}

	matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &config.PatternError{Pattern: entry, Reason: "invalid inherit_from glob", Err: err}
	}
	if len(matches) == 0 {
		return nil, &config.PatternError{Pattern: entry, Reason: "inherit_from glob matched no files"}
	}
	sort.Strings(matches)
	return matches, nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
