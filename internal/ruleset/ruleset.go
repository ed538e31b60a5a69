// Package ruleset builds the per-file set of applicable rules, indexed by
// syntax node kind, and caches it per effective configuration and path.
package ruleset

import (
	"log/slog"
	"sync"

	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/qraqras/leukocyte-sub000/pkg/core"
)

// RuleSet is the rules applying to one file. It is immutable.
type RuleSet struct {
	path   string
	rules  []*materialize.RuleRuntimeConfig
	byKind [core.NodeKindCount][]*materialize.RuleRuntimeConfig
}

// Build selects the enabled rules of cfg whose include list (when
// non-empty) matches path and whose exclude list does not.
func Build(cfg *materialize.EffectiveConfig, path string) *RuleSet {
	rs := &RuleSet{path: path}
	for _, r := range cfg.Rules() {
		if !r.Enabled || !r.Included(path) || r.Excluded(path) {
			continue
		}
		rs.rules = append(rs.rules, r)
		for _, k := range r.Descriptor.NodeKinds {
			if k.Valid() {
				rs.byKind[k] = append(rs.byKind[k], r)
			}
		}
	}
	return rs
}

// Path returns the file the set was built for.
func (rs *RuleSet) Path() string { return rs.path }

// Rules returns the applicable rules in registry order.
func (rs *RuleSet) Rules() []*materialize.RuleRuntimeConfig { return rs.rules }

// Len returns the number of applicable rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Empty reports whether no rule applies.
func (rs *RuleSet) Empty() bool { return len(rs.rules) == 0 }

// For returns the rules dispatched on kind.
func (rs *RuleSet) For(kind core.NodeKind) []*materialize.RuleRuntimeConfig {
	if !kind.Valid() {
		return nil
	}
	return rs.byKind[kind]
}

// Has reports whether the named rule applies.
func (rs *RuleSet) Has(fullName string) bool {
	for _, r := range rs.rules {
		if r.Name() == fullName {
			return true
		}
	}
	return false
}

// Kinds returns the node kinds with at least one rule, in kind order.
func (rs *RuleSet) Kinds() []core.NodeKind {
	var out []core.NodeKind
	for k := range core.NodeKindCount {
		if len(rs.byKind[k]) > 0 {
			out = append(out, k)
		}
	}
	return out
}

type key struct {
	cfg  *materialize.EffectiveConfig
	path string
}

// Cache memoizes rule sets by effective configuration identity and path.
// It stays writable while workers read it.
type Cache struct {
	logger *slog.Logger

	mu   sync.RWMutex
	sets map[key]*RuleSet
}

// NewCache creates an empty cache.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{logger: logger, sets: make(map[key]*RuleSet)}
}

// Get returns the rule set for path under cfg, building it on a miss.
func (c *Cache) Get(cfg *materialize.EffectiveConfig, path string) *RuleSet {
	k := key{cfg: cfg, path: path}

	c.mu.RLock()
	rs, ok := c.sets[k]
	c.mu.RUnlock()
	if ok {
		return rs
	}

	built := Build(cfg, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if rs, ok := c.sets[k]; ok {
		return rs
	}
	c.sets[k] = built
	c.logger.Debug("built rule set", "path", path, "rules", built.Len())
	return built
}

// Len returns the number of cached sets.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}

// Clear drops every cached set.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.sets)
}
