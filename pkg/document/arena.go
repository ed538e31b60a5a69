package document

// slabSize is the number of nodes allocated per slab.
const slabSize = 128

// Arena is a bump allocator for Nodes. All nodes allocated from one arena
// share its lifetime and are dropped together by Release.
//
// An Arena is owned by a single compile operation and is not safe for
// concurrent allocation. A nil *Arena is valid and falls back to the heap.
type Arena struct {
	slabs [][]Node
	next  int
	count int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) alloc() *Node {
	if a == nil {
		return new(Node)
	}
	if len(a.slabs) == 0 || a.next == slabSize {
		a.slabs = append(a.slabs, make([]Node, slabSize))
		a.next = 0
	}
	n := &a.slabs[len(a.slabs)-1][a.next]
	a.next++
	a.count++
	return n
}

// Scalar allocates a scalar node.
func (a *Arena) Scalar(tag, value string) *Node {
	n := a.alloc()
	n.Kind = KindScalar
	n.Tag = tag
	n.Value = value
	return n
}

// Str allocates a "!!str" scalar.
func (a *Arena) Str(value string) *Node {
	return a.Scalar(TagString, value)
}

// Sequence allocates a sequence holding items.
func (a *Arena) Sequence(items ...*Node) *Node {
	n := a.alloc()
	n.Kind = KindSequence
	if len(items) > 0 {
		n.Items = append(make([]*Node, 0, len(items)), items...)
	}
	return n
}

// Strings allocates a sequence of string scalars.
func (a *Arena) Strings(values ...string) *Node {
	n := a.Sequence()
	n.Items = make([]*Node, 0, len(values))
	for _, v := range values {
		n.Items = append(n.Items, a.Str(v))
	}
	return n
}

// Mapping allocates an empty mapping.
func (a *Arena) Mapping() *Node {
	n := a.alloc()
	n.Kind = KindMapping
	return n
}

// Len returns the number of nodes allocated since creation or the last Release.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return a.count
}

// Release drops every slab at once. Nodes allocated from the arena must
// not be used afterwards.
func (a *Arena) Release() {
	if a == nil {
		return
	}
	a.slabs = nil
	a.next = 0
	a.count = 0
}
