// Package merge combines configuration documents.
//
// Conflict policy, applied recursively per key:
//   - mapping + mapping: union of keys, shared keys merged recursively
//   - sequence + sequence: parent items then child items (unless the key is
//     listed under inherit_mode.override)
//   - anything else: the child value replaces the parent value
//
// Merging is pure: inputs are never modified and the result shares no
// nodes with them.
package merge

import (
	"errors"
	"slices"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// maxDepth bounds recursion on pathological documents.
const maxDepth = 64

// Merge errors wrapped in *config.MergeError.
var (
	ErrTooDeep = errors.New("document nesting too deep")
	// ErrNotMapping is document.ErrNotMapping.
	ErrNotMapping = document.ErrNotMapping
)

// Merge folds docs, root-most first, into one mapping allocated from arena.
// nil documents are skipped.
func Merge(arena *document.Arena, docs ...*document.Node) (*document.Node, error) {
	out := arena.Mapping()
	for _, d := range docs {
		if d == nil {
			continue
		}
		if !d.IsMapping() {
			return nil, &config.MergeError{Err: ErrNotMapping}
		}
		merged, err := Pair(arena, out, d)
		if err != nil {
			return nil, err
		}
		out = merged
	}
	return out, nil
}

// Pair merges child over parent.
func Pair(arena *document.Arena, parent, child *document.Node) (*document.Node, error) {
	m := &merger{arena: arena}
	s := scope{childRoot: child, childCop: child, parentCop: parent}
	return m.node(parent, child, "", "", s, 0)
}

type merger struct {
	arena *document.Arena
}

// scope carries the inherit_mode holders visible while merging one key.
type scope struct {
	childRoot *document.Node
	childCop  *document.Node
	parentCop *document.Node
}

func (m *merger) node(parent, child *document.Node, key, path string, s scope, depth int) (*document.Node, error) {
	if depth > maxDepth {
		return nil, &config.MergeError{Key: path, Err: ErrTooDeep}
	}
	switch {
	case parent == nil:
		return child.Clone(m.arena), nil
	case child == nil:
		return parent.Clone(m.arena), nil
	case parent.IsMapping() && child.IsMapping():
		return m.mapping(parent, child, path, s, depth)
	case parent.IsSequence() && child.IsSequence():
		if s.override(key) {
			return child.Clone(m.arena), nil
		}
		out := m.arena.Sequence()
		out.Items = make([]*document.Node, 0, len(parent.Items)+len(child.Items))
		for _, item := range parent.Items {
			out.Items = append(out.Items, item.Clone(m.arena))
		}
		for _, item := range child.Items {
			out.Items = append(out.Items, item.Clone(m.arena))
		}
		return out, nil
	default:
		return child.Clone(m.arena), nil
	}
}

func (m *merger) mapping(parent, child *document.Node, path string, s scope, depth int) (*document.Node, error) {
	out := m.arena.Mapping()
	out.Line = child.Line
	out.Pairs = make([]document.Pair, 0, len(parent.Pairs)+len(child.Pairs))

	for _, p := range parent.Pairs {
		cv := child.Get(p.Key)
		if cv == nil {
			out.Pairs = append(out.Pairs, document.Pair{Key: p.Key, Value: p.Value.Clone(m.arena)})
			continue
		}
		inner := s
		if depth == 0 {
			// top-level sections are the "cop level" for inherit_mode
			inner.childCop = cv
			inner.parentCop = p.Value
		}
		v, err := m.node(p.Value, cv, p.Key, join(path, p.Key), inner, depth+1)
		if err != nil {
			return nil, err
		}
		out.Pairs = append(out.Pairs, document.Pair{Key: p.Key, Value: v})
	}

	for _, c := range child.Pairs {
		if parent.Has(c.Key) {
			continue
		}
		out.Pairs = append(out.Pairs, document.Pair{Key: c.Key, Value: c.Value.Clone(m.arena)})
	}
	return out, nil
}

// override reports whether key must replace rather than concatenate.
// Lookup order: child cop level, parent cop level, child root level.
func (s scope) override(key string) bool {
	for _, holder := range []*document.Node{s.childCop, s.parentCop, s.childRoot} {
		mode := holder.Get(config.KeyInheritMode)
		if !mode.IsMapping() {
			continue
		}
		if slices.Contains(mode.Get("override").Strings(), key) {
			return true
		}
		if slices.Contains(mode.Get("merge").Strings(), key) {
			return false
		}
	}
	return false
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
