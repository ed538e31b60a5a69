package document

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// maxDepth bounds nesting, counting alias hops.
	maxDepth = 64
	// maxNodes bounds the nodes one document may expand to. Every alias is
	// expanded into a copy, so a small file can otherwise fan out
	// exponentially.
	maxNodes = 250_000
)

var (
	// ErrNotMapping is returned when a document's root is not a mapping.
	ErrNotMapping = errors.New("document root is not a mapping")
	// ErrTooLarge is returned when a document expands past maxNodes.
	ErrTooLarge = errors.New("document expands to too many nodes")
)

// Parse decodes a YAML document into a mapping Node allocated from arena.
// An empty document yields an empty mapping.
func Parse(data []byte, arena *Arena) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return arena.Mapping(), nil
	}

	c := &converter{arena: arena}
	n, err := c.convert(root.Content[0], 0)
	if err != nil {
		return nil, err
	}
	if n.IsNull() {
		return arena.Mapping(), nil
	}
	if !n.IsMapping() {
		return nil, fmt.Errorf("%w (found %s at line %d)", ErrNotMapping, n.Kind, n.Line)
	}
	return n, nil
}

// MustParse is Parse for tests and static fixtures. It panics on error.
func MustParse(src string) *Node {
	n, err := Parse([]byte(src), nil)
	if err != nil {
		panic(err)
	}
	return n
}

// converter turns yaml.v3 nodes into Nodes, counting every allocation.
type converter struct {
	arena *Arena
	nodes int
}

func (c *converter) convert(y *yaml.Node, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("line %d: nesting exceeds %d levels", y.Line, maxDepth)
	}
	if y.Kind != yaml.DocumentNode && y.Kind != yaml.AliasNode {
		if c.nodes++; c.nodes > maxNodes {
			return nil, fmt.Errorf("line %d: %w (limit %d)", y.Line, ErrTooLarge, maxNodes)
		}
	}
	arena := c.arena

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return arena.Scalar(TagNull, ""), nil
		}
		return c.convert(y.Content[0], depth+1)

	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias %q", y.Line, y.Value)
		}
		return c.convert(y.Alias, depth+1)

	case yaml.ScalarNode:
		n := arena.Scalar(y.ShortTag(), y.Value)
		n.Line = y.Line
		return n, nil

	case yaml.SequenceNode:
		n := arena.Sequence()
		n.Line = y.Line
		n.Items = make([]*Node, 0, len(y.Content))
		for _, child := range y.Content {
			item, err := c.convert(child, depth+1)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, item)
		}
		return n, nil

	case yaml.MappingNode:
		n := arena.Mapping()
		n.Line = y.Line
		var merged []*Node
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			val, err := c.convert(v, depth+1)
			if err != nil {
				return nil, err
			}
			if k.Tag == "!!merge" || (k.Value == "<<" && k.ShortTag() == "!!merge") {
				merged = append(merged, val)
				continue
			}
			n.Set(k.Value, val)
		}
		// "<<" merge keys contribute only keys not set explicitly
		for _, m := range merged {
			sources := []*Node{m}
			if m.IsSequence() {
				sources = m.Items
			}
			for _, src := range sources {
				for _, p := range src.Pairs {
					if !n.Has(p.Key) {
						n.Pairs = append(n.Pairs, p)
					}
				}
			}
		}
		return n, nil
	}

	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", y.Line, y.Kind)
}
