package compiled

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/qraqras/leukocyte-sub000/internal/config/discovery"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// Config configures a Compiler.
type Config struct {
	Walker       *discovery.Walker
	Materializer *materialize.Materializer
	// Override, when set, replaces discovery with this one file.
	Override string
	Logger   *slog.Logger
}

// Compiler turns directories into Nodes. It is safe for concurrent use.
type Compiler struct {
	walker       *discovery.Walker
	materializer *materialize.Materializer
	override     string
	logger       *slog.Logger
}

// NewCompiler creates a compiler.
func NewCompiler(cfg Config) *Compiler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{
		walker:       cfg.Walker,
		materializer: cfg.Materializer,
		override:     cfg.Override,
		logger:       logger,
	}
}

// Compile builds the node for dir.
//
// With a nil parent the configuration is discovered upward from dir.
// With a parent only dir's own configuration file is loaded and the
// parent's global include/exclude are placed ahead of its own; when dir
// has no file of its own the parent is returned with a new reference.
//
// The returned node carries one reference owned by the caller.
func (c *Compiler) Compile(dir string, parent *Node) (*Node, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", dir, err)
	}

	arena := document.NewArena()
	var res *discovery.Result
	if parent == nil || c.override != "" {
		res, err = c.walker.Discover(dir, c.override, arena)
	} else {
		res, err = c.walker.DiscoverLocal(dir, arena)
	}
	if err != nil {
		arena.Release()
		return nil, fmt.Errorf("compile %s: %w", dir, err)
	}

	if res == nil && parent != nil {
		arena.Release()
		return parent.Ref(), nil
	}

	// relative patterns resolve against the nearest file's directory
	n := &Node{dir: dir, arena: arena}
	base := dir
	if res != nil {
		n.merged = res.Merged
		n.nearest = res.Nearest
		n.sources = res.Sources
		n.fingerprint = Fingerprint(res.Nearest.Path, res.Nearest.ModTime)
		base = filepath.Dir(res.Nearest.Path)
	}
	n.effective = c.materializer.Materialize(n.merged, base)

	if parent != nil && c.override == "" {
		n.effective.InheritGlobal(parent.Effective(), c.logger)
		n.sources = append(parent.Sources()[:len(parent.Sources()):len(parent.Sources())], n.sources...)
	}

	n.refs.Store(1)
	c.logger.Debug("compiled configuration", "dir", dir, "nearest", n.nearest.Path,
		"sources", len(n.sources), "fingerprint", n.String())
	return n, nil
}
