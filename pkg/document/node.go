package document

import (
	"strconv"
	"strings"
)

// Kind is the shape of a Node.
type Kind uint8

// Node kinds.
const (
	KindScalar Kind = iota
	KindSequence
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Resolved scalar tags.
const (
	TagString = "!!str"
	TagInt    = "!!int"
	TagFloat  = "!!float"
	TagBool   = "!!bool"
	TagNull   = "!!null"
)

// Pair is one key/value entry of a mapping.
type Pair struct {
	Key   string
	Value *Node
}

// Node is one element of a configuration tree.
type Node struct {
	Kind  Kind
	Tag   string // scalar tag, e.g. "!!int"
	Value string // scalar text
	Items []*Node
	Pairs []Pair
	Line  int
	// Origin is the directory of the file the node was loaded from.
	// Relative Include/Exclude patterns are anchored there.
	Origin string
}

// IsScalar reports whether n is a non-nil scalar.
func (n *Node) IsScalar() bool { return n != nil && n.Kind == KindScalar }

// IsSequence reports whether n is a non-nil sequence.
func (n *Node) IsSequence() bool { return n != nil && n.Kind == KindSequence }

// IsMapping reports whether n is a non-nil mapping.
func (n *Node) IsMapping() bool { return n != nil && n.Kind == KindMapping }

// IsNull reports whether n is absent or an explicit null scalar.
func (n *Node) IsNull() bool {
	return n == nil || (n.Kind == KindScalar && n.Tag == TagNull)
}

// Len returns the number of items or pairs.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindSequence:
		return len(n.Items)
	case KindMapping:
		return len(n.Pairs)
	default:
		return 0
	}
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	if !n.IsMapping() {
		return nil
	}
	for i := range n.Pairs {
		if n.Pairs[i].Key == key {
			return n.Pairs[i].Value
		}
	}
	return nil
}

// GetFold is Get with case-insensitive key matching.
func (n *Node) GetFold(key string) *Node {
	if v := n.Get(key); v != nil {
		return v
	}
	if !n.IsMapping() {
		return nil
	}
	for i := range n.Pairs {
		if strings.EqualFold(n.Pairs[i].Key, key) {
			return n.Pairs[i].Value
		}
	}
	return nil
}

// Has reports whether key is present.
func (n *Node) Has(key string) bool {
	if !n.IsMapping() {
		return false
	}
	for i := range n.Pairs {
		if n.Pairs[i].Key == key {
			return true
		}
	}
	return false
}

// Keys returns the mapping keys in document order.
func (n *Node) Keys() []string {
	if !n.IsMapping() {
		return nil
	}
	keys := make([]string, len(n.Pairs))
	for i, p := range n.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// Set stores v under key, replacing an existing entry in place.
// Only valid while the tree is being built.
func (n *Node) Set(key string, v *Node) {
	for i := range n.Pairs {
		if n.Pairs[i].Key == key {
			n.Pairs[i].Value = v
			return
		}
	}
	n.Pairs = append(n.Pairs, Pair{Key: key, Value: v})
}

// Append adds items to a sequence. Only valid while the tree is being built.
func (n *Node) Append(items ...*Node) {
	n.Items = append(n.Items, items...)
}

// String returns the scalar text, or "" for non-scalars.
func (n *Node) String() string {
	if !n.IsScalar() {
		return ""
	}
	return n.Value
}

// Bool interprets a scalar as a boolean. It accepts true/false, yes/no,
// on/off and 1/0 in any case. ok is false when n is not a boolean-like scalar.
func (n *Node) Bool() (value bool, ok bool) {
	if !n.IsScalar() {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(n.Value)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// Int interprets a scalar as an integer.
func (n *Node) Int() (int, bool) {
	if !n.IsScalar() {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		return 0, false
	}
	return v, true
}

// Strings flattens n into a string list: a scalar yields one element and a
// sequence yields its scalar items. Null and non-scalar items are skipped.
func (n *Node) Strings() []string {
	switch {
	case n.IsNull():
		return nil
	case n.IsScalar():
		return []string{n.Value}
	case n.IsSequence():
		out := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			if item.IsScalar() && !item.IsNull() {
				out = append(out, item.Value)
			}
		}
		return out
	}
	return nil
}

// Interface converts n into plain Go values: map[string]any, []any, string,
// int, float64, bool or nil. Used to feed decoders such as mapstructure.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindMapping:
		m := make(map[string]any, len(n.Pairs))
		for _, p := range n.Pairs {
			m[p.Key] = p.Value.Interface()
		}
		return m
	case KindSequence:
		s := make([]any, len(n.Items))
		for i, item := range n.Items {
			s[i] = item.Interface()
		}
		return s
	}
	switch n.Tag {
	case TagNull:
		return nil
	case TagBool:
		if b, ok := n.Bool(); ok {
			return b
		}
	case TagInt:
		if v, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return int(v)
		}
	case TagFloat:
		if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return v
		}
	}
	return n.Value
}

// Equal reports structural equality. Line numbers are ignored.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case KindScalar:
		return n.Value == other.Value && n.Tag == other.Tag
	case KindSequence:
		if len(n.Items) != len(other.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		if len(n.Pairs) != len(other.Pairs) {
			return false
		}
		for i := range n.Pairs {
			if n.Pairs[i].Key != other.Pairs[i].Key || !n.Pairs[i].Value.Equal(other.Pairs[i].Value) {
				return false
			}
		}
		return true
	}
}

// Clone deep-copies n into arena.
func (n *Node) Clone(arena *Arena) *Node {
	if n == nil {
		return nil
	}
	c := arena.alloc()
	c.Kind = n.Kind
	c.Tag = n.Tag
	c.Value = n.Value
	c.Line = n.Line
	c.Origin = n.Origin
	if len(n.Items) > 0 {
		c.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			c.Items[i] = item.Clone(arena)
		}
	}
	if len(n.Pairs) > 0 {
		c.Pairs = make([]Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			c.Pairs[i] = Pair{Key: p.Key, Value: p.Value.Clone(arena)}
		}
	}
	return c
}

// SetOrigin records dir as the origin of n and every node below it.
// Only valid while the tree is being built.
func (n *Node) SetOrigin(dir string) {
	if n == nil {
		return
	}
	n.Origin = dir
	for _, item := range n.Items {
		item.SetOrigin(dir)
	}
	for _, p := range n.Pairs {
		p.Value.SetOrigin(dir)
	}
}
