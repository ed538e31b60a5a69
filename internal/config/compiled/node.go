// Package compiled builds directory-scoped configuration nodes: the
// discovered, merged and materialized configuration of one directory,
// shared by reference count.
package compiled

import (
	"hash/fnv"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/qraqras/leukocyte-sub000/internal/config/discovery"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// Node is the compiled configuration of one directory. A Node is frozen
// once returned by the Compiler; holders share it by reference count and
// the last Release frees its arena.
type Node struct {
	dir         string
	fingerprint uint64
	nearest     discovery.Source
	sources     []discovery.Source
	arena       *document.Arena
	merged      *document.Node
	effective   *materialize.EffectiveConfig
	refs        atomic.Int32
}

// Dir returns the directory the node was compiled for.
func (n *Node) Dir() string { return n.dir }

// Fingerprint identifies the nearest configuration file and the
// modification time it had at compile time. Zero when no file was found.
func (n *Node) Fingerprint() uint64 { return n.fingerprint }

// HasConfig reports whether any configuration file contributed.
func (n *Node) HasConfig() bool { return len(n.sources) > 0 }

// Nearest returns the configuration file closest to the directory.
func (n *Node) Nearest() discovery.Source { return n.nearest }

// Sources returns every contributing file, including inherited parents
// and, for composed nodes, the parent node's sources.
func (n *Node) Sources() []discovery.Source { return n.sources }

// Merged returns the merged document. It must not be modified.
func (n *Node) Merged() *document.Node { return n.merged }

// Effective returns the materialized configuration.
func (n *Node) Effective() *materialize.EffectiveConfig { return n.effective }

// Stale reports whether any contributing file changed or disappeared.
func (n *Node) Stale() bool { return discovery.AnyChanged(n.sources) }

// Ref takes another reference and returns n.
func (n *Node) Ref() *Node {
	if n.refs.Add(1) <= 1 {
		panic("compiled: Ref on released node " + n.dir)
	}
	return n
}

// Release drops one reference. The last one frees the arena, the merged
// document and the effective configuration.
func (n *Node) Release() {
	switch r := n.refs.Add(-1); {
	case r == 0:
		n.arena.Release()
		n.arena = nil
		n.merged = nil
		n.effective = nil
	case r < 0:
		panic("compiled: node released too many times: " + n.dir)
	}
}

// Refs returns the current reference count.
func (n *Node) Refs() int32 { return n.refs.Load() }

// String implements fmt.Stringer.
func (n *Node) String() string {
	return n.dir + "@" + strconv.FormatUint(n.fingerprint, 16)
}

// Fingerprint hashes path with FNV-1a and mixes in the modification time.
func Fingerprint(path string, modTime time.Time) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return h.Sum64() ^ uint64(modTime.UnixNano())
}
