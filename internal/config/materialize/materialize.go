package materialize

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// Materializer builds EffectiveConfigs from merged documents.
// It is safe for concurrent use.
type Materializer struct {
	registry *lint.Registry
	logger   *slog.Logger
}

// New creates a materializer for the rules in registry.
func New(registry *lint.Registry, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Materializer{registry: registry, logger: logger}
}

// Registry returns the rule registry.
func (m *Materializer) Registry() *lint.Registry { return m.registry }

// Materialize resolves every registered rule against doc. Relative
// patterns are resolved against baseDir. A nil doc yields the registry
// defaults.
//
// Errors in one rule's parameters or in one pattern are logged and never
// abort materialization.
func (m *Materializer) Materialize(doc *document.Node, baseDir string) *EffectiveConfig {
	global := doc.Get(config.KeyAllCops)
	gInclude := globsOf(global.Get(config.KeyInclude), baseDir)
	gExclude := globsOf(global.Get(config.KeyExclude), baseDir)

	cfg := &EffectiveConfig{
		baseDir:    baseDir,
		global:     newFilter(baseDir, gInclude, gExclude, m.logger),
		categories: make(map[string]*CategoryConfig),
		rules:      make([]*RuleRuntimeConfig, 0, m.registry.Len()),
		byName:     make(map[string]*RuleRuntimeConfig, m.registry.Len()),
	}

	for _, name := range m.registry.Categories() {
		node := doc.Get(name)
		cfg.categories[name] = &CategoryConfig{
			Name: name,
			Filter: newFilter(baseDir,
				globsOf(node.Get(config.KeyInclude), baseDir),
				globsOf(node.Get(config.KeyExclude), baseDir),
				m.logger),
		}
	}

	for _, d := range m.registry.All() {
		cat := cfg.categories[d.Category]
		rc := m.rule(d, doc.Get(d.FullName()), baseDir, gInclude, gExclude, cat)
		cfg.rules = append(cfg.rules, rc)
		cfg.byName[d.FullName()] = rc
	}

	return cfg
}

func (m *Materializer) rule(d *lint.RuleDescriptor, node *document.Node, baseDir string, gInclude, gExclude []glob, cat *CategoryConfig) *RuleRuntimeConfig {
	rc := &RuleRuntimeConfig{
		Descriptor: d,
		Enabled:    !d.DefaultDisabled,
		Severity:   d.DefaultSeverity,
	}

	if enabled := node.Get(config.KeyEnabled); enabled != nil {
		if v, ok := enabled.Bool(); ok {
			rc.Enabled = v
		} else {
			m.logger.Warn("ignoring non-boolean Enabled", "rule", d.FullName(), "value", enabled.String())
		}
	}

	if sev := node.Get(config.KeySeverity); sev != nil {
		s, ok := core.ParseSeverity(sev.String())
		if !ok {
			m.logger.Warn("unknown severity, using default", "rule", d.FullName(),
				"value", sev.String(), "default", s.String())
		}
		rc.Severity = s
	}

	rc.Filter = newFilter(baseDir,
		concat(gInclude, cat.include, globsOf(node.Get(config.KeyInclude), baseDir)),
		concat(gExclude, cat.exclude, globsOf(node.Get(config.KeyExclude), baseDir)),
		m.logger)

	rc.Params = m.params(d, node)
	return rc
}

// params runs the rule's handler. A rejected value leaves the defaults
// in place.
func (m *Materializer) params(d *lint.RuleDescriptor, node *document.Node) any {
	if d.Handler == nil {
		return nil
	}
	p, err := d.Handler.Apply(node)
	if err == nil {
		return p
	}

	herr := &config.HandlerError{Rule: d.FullName(), Err: err}
	var perr *lint.ParamError
	if errors.As(err, &perr) {
		herr.Key = perr.Key
	}
	m.logger.Warn("invalid rule parameters, using defaults", "rule", d.FullName(), "err", herr)
	return d.DefaultParams()
}

// UnknownKeys returns the keys of rule sections in doc that neither the
// cascade nor the rule's handler recognizes, as "Rule.Key" strings.
func (m *Materializer) UnknownKeys(doc *document.Node) []string {
	var out []string
	for _, d := range m.registry.All() {
		node := doc.Get(d.FullName())
		if !node.IsMapping() {
			continue
		}
		for _, key := range node.Keys() {
			if config.IsReservedRuleKey(key) || knownKey(d.ConfigKeys, key) {
				continue
			}
			out = append(out, d.FullName()+"."+key)
		}
	}
	return out
}

// UnknownRules lists top-level "Category/Name" keys in doc that name no
// registered rule, in document order.
func (m *Materializer) UnknownRules(doc *document.Node) []string {
	var out []string
	for _, key := range doc.Keys() {
		if !strings.Contains(key, "/") {
			continue
		}
		if _, ok := m.registry.Lookup(key); !ok {
			out = append(out, key)
		}
	}
	return out
}

func knownKey(keys []string, key string) bool {
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
