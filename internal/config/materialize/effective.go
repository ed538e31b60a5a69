// Package materialize turns a merged configuration document into typed,
// per-rule runtime configuration.
package materialize

import (
	"log/slog"
	"path"
	"path/filepath"
	"slices"

	"github.com/qraqras/leukocyte-sub000/internal/pattern"
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// glob is one Include/Exclude entry and the directory of the file that
// defined it.
type glob struct {
	pattern string
	origin  string
}

// globsOf flattens a scalar or sequence node into globs. Entries without a
// recorded origin are attributed to fallback.
func globsOf(node *document.Node, fallback string) []glob {
	var items []*document.Node
	switch {
	case node.IsNull():
		return nil
	case node.IsScalar():
		items = []*document.Node{node}
	case node.IsSequence():
		items = node.Items
	}
	out := make([]glob, 0, len(items))
	for _, item := range items {
		if !item.IsScalar() || item.IsNull() {
			continue
		}
		origin := item.Origin
		if origin == "" {
			origin = fallback
		}
		out = append(out, glob{pattern: item.Value, origin: origin})
	}
	return out
}

func patternsOf(globs []glob) []string {
	if len(globs) == 0 {
		return nil
	}
	out := make([]string, len(globs))
	for i, g := range globs {
		out[i] = g.pattern
	}
	return out
}

// Filter is an include/exclude pair with its compiled pattern sets.
//
// Every pattern is matched relative to the base directory. Patterns defined
// by a file in another directory (an ancestor or an inherit_from target)
// are also matched relative to that directory, so an ancestor's exclusion
// keeps applying below a directory with its own configuration file.
type Filter struct {
	Include []string
	Exclude []string

	include []glob
	exclude []glob

	includeSet      *pattern.Set
	excludeSet      *pattern.Set
	includeAnchored []*pattern.Set
	excludeAnchored []*pattern.Set
}

func newFilter(base string, include, exclude []glob, logger *slog.Logger) Filter {
	return Filter{
		Include:         patternsOf(include),
		Exclude:         patternsOf(exclude),
		include:         include,
		exclude:         exclude,
		includeSet:      pattern.NewSet(base, patternsOf(include), logger),
		excludeSet:      pattern.NewSet(base, patternsOf(exclude), logger),
		includeAnchored: anchored(base, include),
		excludeAnchored: anchored(base, exclude),
	}
}

// anchored compiles one set per defining directory other than base, in
// first-seen order. Compile failures were already reported for the base set.
func anchored(base string, globs []glob) []*pattern.Set {
	var origins []string
	byOrigin := make(map[string][]string)
	for _, g := range globs {
		if g.origin == "" || g.origin == base {
			continue
		}
		if _, ok := byOrigin[g.origin]; !ok {
			origins = append(origins, g.origin)
		}
		byOrigin[g.origin] = append(byOrigin[g.origin], g.pattern)
	}
	if len(origins) == 0 {
		return nil
	}
	sets := make([]*pattern.Set, len(origins))
	for i, o := range origins {
		sets[i] = pattern.NewSet(o, byOrigin[o], nil)
	}
	return sets
}

func matchAny(sets []*pattern.Set, path string) bool {
	for _, s := range sets {
		if s.Match(path) {
			return true
		}
	}
	return false
}

// Included reports whether path passes the include list. An empty list
// includes everything.
func (f *Filter) Included(path string) bool {
	return f.includeSet.Empty() || f.includeSet.Match(path) || matchAny(f.includeAnchored, path)
}

// Excluded reports whether any exclude pattern matches path.
func (f *Filter) Excluded(path string) bool {
	return f.excludeSet.Match(path) || matchAny(f.excludeAnchored, path)
}

// Allows reports whether path is included and not excluded.
func (f *Filter) Allows(path string) bool {
	return f.Included(path) && !f.Excluded(path)
}

// IncludeSet returns the include patterns compiled against the base directory.
func (f *Filter) IncludeSet() *pattern.Set { return f.includeSet }

// ExcludeSet returns the exclude patterns compiled against the base directory.
func (f *Filter) ExcludeSet() *pattern.Set { return f.excludeSet }

// Anchored returns the relative patterns defined outside base joined onto
// the directory that defined them, for consumers that only keep strings.
func (f *Filter) Anchored(base string) (include, exclude []string) {
	return absolute(base, f.include), absolute(base, f.exclude)
}

func absolute(base string, globs []glob) []string {
	var out []string
	for _, g := range globs {
		if g.origin == "" || g.origin == base || path.IsAbs(g.pattern) {
			continue
		}
		out = append(out, path.Join(filepath.ToSlash(g.origin), g.pattern))
	}
	return out
}

// RuleRuntimeConfig is the materialized configuration of one rule.
// Include and Exclude hold the global, category and rule lists
// concatenated in that order.
type RuleRuntimeConfig struct {
	Filter

	Descriptor *lint.RuleDescriptor
	Enabled    bool
	Severity   core.Severity
	// Params is the value returned by the rule's handler, or its defaults.
	Params any
}

// Name returns the rule's full name.
func (r *RuleRuntimeConfig) Name() string { return r.Descriptor.FullName() }

// CategoryConfig holds a category's own include/exclude lists.
type CategoryConfig struct {
	Filter

	Name string
}

// EffectiveConfig is the fully materialized configuration for one
// directory. It is immutable once published.
type EffectiveConfig struct {
	baseDir    string
	global     Filter
	categories map[string]*CategoryConfig
	rules      []*RuleRuntimeConfig
	byName     map[string]*RuleRuntimeConfig
}

// BaseDir returns the directory relative patterns are resolved against.
func (c *EffectiveConfig) BaseDir() string { return c.baseDir }

// GlobalInclude returns the global include patterns.
func (c *EffectiveConfig) GlobalInclude() []string { return c.global.Include }

// GlobalExclude returns the global exclude patterns.
func (c *EffectiveConfig) GlobalExclude() []string { return c.global.Exclude }

// Global returns the global filter.
func (c *EffectiveConfig) Global() *Filter { return &c.global }

// AllowsFile performs the global-scope check used by file collection.
func (c *EffectiveConfig) AllowsFile(path string) bool {
	return c.global.Allows(path)
}

// Category returns the named category, or nil.
func (c *EffectiveConfig) Category(name string) *CategoryConfig {
	return c.categories[name]
}

// CategoryInclude returns the category's own include patterns.
func (c *EffectiveConfig) CategoryInclude(name string) []string {
	if cat := c.categories[name]; cat != nil {
		return cat.Include
	}
	return nil
}

// CategoryExclude returns the category's own exclude patterns.
func (c *EffectiveConfig) CategoryExclude(name string) []string {
	if cat := c.categories[name]; cat != nil {
		return cat.Exclude
	}
	return nil
}

// Categories returns category names in registry order.
func (c *EffectiveConfig) Categories() []string {
	var out []string
	for _, r := range c.rules {
		if !slices.Contains(out, r.Descriptor.Category) {
			out = append(out, r.Descriptor.Category)
		}
	}
	return out
}

// Rules returns every rule in registry order.
func (c *EffectiveConfig) Rules() []*RuleRuntimeConfig { return c.rules }

// Rule looks a rule up by full name ("Layout/LineLength").
func (c *EffectiveConfig) Rule(fullName string) (*RuleRuntimeConfig, bool) {
	r, ok := c.byName[fullName]
	return r, ok
}

// EnabledRules returns the enabled rules in registry order.
func (c *EffectiveConfig) EnabledRules() []*RuleRuntimeConfig {
	out := make([]*RuleRuntimeConfig, 0, len(c.rules))
	for _, r := range c.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// InheritGlobal prepends parent's global include and exclude lists to
// c's own and recompiles them against c's base directory. The parent's
// patterns also stay anchored where they were defined. It must be called
// before c is shared.
func (c *EffectiveConfig) InheritGlobal(parent *EffectiveConfig, logger *slog.Logger) {
	if parent == nil {
		return
	}
	include := concat(parent.global.include, c.global.include)
	exclude := concat(parent.global.exclude, c.global.exclude)
	c.global = newFilter(c.baseDir, include, exclude, logger)
}

// GlobalAnchored returns Filter.Anchored for the global scope.
func (c *EffectiveConfig) GlobalAnchored() (include, exclude []string) {
	return c.global.Anchored(c.baseDir)
}

func concat[T any](lists ...[]T) []T {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	if n == 0 {
		return nil
	}
	out := make([]T, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
