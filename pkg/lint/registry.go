package lint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qraqras/leukocyte-sub000/pkg/core"
)

// Registry errors.
var (
	ErrDuplicateRule     = errors.New("duplicate rule")
	ErrInvalidDescriptor = errors.New("invalid rule descriptor")
)

// Registry is an immutable, ordered table of rule descriptors.
// Iteration order is registration order. A Registry is safe for
// concurrent use because it is never modified after NewRegistry returns.
type Registry struct {
	rules      []*RuleDescriptor
	byName     map[string]*RuleDescriptor
	categories []string
	byCategory map[string][]*RuleDescriptor
}

// NewRegistry builds a registry from rules, in order.
func NewRegistry(rules ...RuleDescriptor) (*Registry, error) {
	r := &Registry{
		rules:      make([]*RuleDescriptor, 0, len(rules)),
		byName:     make(map[string]*RuleDescriptor, len(rules)),
		byCategory: make(map[string][]*RuleDescriptor),
	}

	for i := range rules {
		d := rules[i]
		if err := validateDescriptor(&d); err != nil {
			return nil, err
		}
		name := d.FullName()
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, name)
		}

		r.rules = append(r.rules, &d)
		r.byName[name] = &d
		if _, seen := r.byCategory[d.Category]; !seen {
			r.categories = append(r.categories, d.Category)
		}
		r.byCategory[d.Category] = append(r.byCategory[d.Category], &d)
	}

	return r, nil
}

// MustRegistry is NewRegistry that panics on error.
// Intended for static tables.
func MustRegistry(rules ...RuleDescriptor) *Registry {
	r, err := NewRegistry(rules...)
	if err != nil {
		panic(err)
	}
	return r
}

func validateDescriptor(d *RuleDescriptor) error {
	switch {
	case d.Category == "" || d.Name == "":
		return fmt.Errorf("%w: category and name are required (%q)", ErrInvalidDescriptor, d.FullName())
	case strings.Contains(d.Category, "/") || strings.Contains(d.Name, "/"):
		return fmt.Errorf("%w: %q must not contain '/' in category or name", ErrInvalidDescriptor, d.FullName())
	}
	for _, k := range d.NodeKinds {
		if !k.Valid() {
			return fmt.Errorf("%w: %s subscribes to unknown node kind %d", ErrInvalidDescriptor, d.FullName(), k)
		}
	}
	return nil
}

// All returns every descriptor in registration order.
func (r *Registry) All() []*RuleDescriptor {
	out := make([]*RuleDescriptor, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Lookup returns the rule named "Category/Name".
func (r *Registry) Lookup(fullName string) (*RuleDescriptor, bool) {
	d, ok := r.byName[fullName]
	return d, ok
}

// Find returns the rule with the given category and name.
func (r *Registry) Find(category, name string) (*RuleDescriptor, bool) {
	return r.Lookup(category + "/" + name)
}

// Has reports whether category/name is registered.
func (r *Registry) Has(category, name string) bool {
	_, ok := r.Find(category, name)
	return ok
}

// Categories returns category names in first-registration order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.categories))
	copy(out, r.categories)
	return out
}

// HasCategory reports whether any rule belongs to category.
func (r *Registry) HasCategory(category string) bool {
	_, ok := r.byCategory[category]
	return ok
}

// InCategory returns the rules of one category in registration order.
func (r *Registry) InCategory(category string) []*RuleDescriptor {
	rules := r.byCategory[category]
	out := make([]*RuleDescriptor, len(rules))
	copy(out, rules)
	return out
}

// Infos returns metadata for every rule in registration order.
func (r *Registry) Infos() []core.RuleInfo {
	infos := make([]core.RuleInfo, len(r.rules))
	for i, d := range r.rules {
		infos[i] = d.Info()
	}
	return infos
}
