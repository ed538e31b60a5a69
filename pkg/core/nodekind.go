package core

import "strings"

// =============================================================================
// NodeKind
// =============================================================================

// NodeKind identifies a syntax node type that rules can subscribe to.
// The per-file rule set is indexed by NodeKind for constant-time dispatch.
type NodeKind int

// Node kinds visited by the analyzer.
const (
	NodeProgram NodeKind = iota
	NodeStatements
	NodeDef
	NodeClass
	NodeModule
	NodeCall
	NodeIf
	NodeBlock
	NodeString

	// NodeKindCount is the number of node kinds. Keep it last.
	NodeKindCount
)

var nodeKindNames = [...]string{
	NodeProgram:    "program",
	NodeStatements: "statements",
	NodeDef:        "def",
	NodeClass:      "class",
	NodeModule:     "module",
	NodeCall:       "call",
	NodeIf:         "if",
	NodeBlock:      "block",
	NodeString:     "string",
}

// String returns the lowercase node kind name.
func (k NodeKind) String() string {
	if k < 0 || k >= NodeKindCount {
		return "unknown"
	}
	return nodeKindNames[k]
}

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool {
	return k >= 0 && k < NodeKindCount
}

// ParseNodeKind converts a name to a NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range nodeKindNames {
		if name == s {
			return NodeKind(i), true
		}
	}
	return 0, false
}

// AllNodeKinds returns every node kind in index order.
func AllNodeKinds() []NodeKind {
	kinds := make([]NodeKind, 0, NodeKindCount)
	for k := NodeKind(0); k < NodeKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
