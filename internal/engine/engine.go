// Package engine wires the configuration services together and runs the
// per-file pipeline: collect, warm, then resolve rule sets in input order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	goruntime "runtime"

	"github.com/qraqras/leukocyte-sub000/internal/collect"
	"github.com/qraqras/leukocyte-sub000/internal/config/compiled"
	"github.com/qraqras/leukocyte-sub000/internal/config/discovery"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/qraqras/leukocyte-sub000/internal/config/runtime"
	"github.com/qraqras/leukocyte-sub000/internal/ruleset"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules"
	"golang.org/x/sync/errgroup"
)

// ErrConfigChanged is returned when a warmed configuration changes while
// files are being analyzed.
var ErrConfigChanged = errors.New("configuration changed during the run")

// Engine owns one set of configuration caches.
type Engine struct {
	registry     *lint.Registry
	inherit      *discovery.InheritCache
	materializer *materialize.Materializer
	compiler     *compiled.Compiler
	configs      *runtime.Cache
	rulesets     *ruleset.Cache
	collector    *collect.Collector
	syncer       *sidecar.Syncer
	workers      int
	logger       *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Registry is the rule table. Defaults to the built-in rules.
	Registry *lint.Registry
	// ConfigPath replaces configuration discovery with one file (optional).
	ConfigPath string
	// Workers bounds concurrency. Defaults to the number of CPUs.
	Workers int
	// ProjectDir locates the sidecar directory when UseSidecar is set.
	ProjectDir string
	// UseSidecar makes file collection use the synced sidecar snapshots.
	UseSidecar bool
	// InheritCacheSize bounds the inherit_from cache (optional).
	InheritCacheSize int
	// Patterns overrides the collector's target patterns (optional).
	Patterns []string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	registry := cfg.Registry
	if registry == nil {
		registry = rules.NewRegistry()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = goruntime.NumCPU()
	}

	logger.Debug("initializing engine", "rules", registry.Len(), "workers", workers,
		"config", cfg.ConfigPath, "sidecar", cfg.UseSidecar)

	inherit, err := discovery.NewInheritCache(cfg.InheritCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create inherit cache: %w", err)
	}

	walker := discovery.NewWalker(discovery.NewResolver(inherit, logger), registry, logger)
	materializer := materialize.New(registry, logger)
	compiler := compiled.NewCompiler(compiled.Config{
		Walker:       walker,
		Materializer: materializer,
		Override:     cfg.ConfigPath,
		Logger:       logger,
	})

	var index *sidecar.Index
	if cfg.UseSidecar {
		projectDir := cfg.ProjectDir
		if projectDir == "" {
			if projectDir, err = os.Getwd(); err != nil {
				return nil, err
			}
		}
		if index, err = sidecar.LoadIndex(sidecar.IndexPath(projectDir), logger); err != nil {
			return nil, fmt.Errorf("failed to load sidecar index: %w", err)
		}
	}

	return &Engine{
		registry:     registry,
		inherit:      inherit,
		materializer: materializer,
		compiler:     compiler,
		configs:      runtime.New(runtime.Config{Compiler: compiler, Workers: workers, Logger: logger}),
		rulesets:     ruleset.NewCache(logger),
		collector: collect.New(collect.Config{
			Compiler: compiler,
			Sidecar:  index,
			Patterns: cfg.Patterns,
			Logger:   logger,
		}),
		syncer:  sidecar.NewSyncer(sidecar.SyncConfig{Compiler: compiler, Workers: workers, Logger: logger}),
		workers: workers,
		logger:  logger,
	}, nil
}

// Registry returns the rule table.
func (e *Engine) Registry() *lint.Registry { return e.registry }

// Collect returns the target files for paths.
func (e *Engine) Collect(ctx context.Context, paths []string) ([]string, error) {
	return e.collector.Collect(ctx, paths)
}

// FileResult is the rule set resolved for one file.
type FileResult struct {
	Path string
	// Config is the nearest configuration file, empty when none applies.
	Config  string
	RuleSet *ruleset.RuleSet
}

// Report is the outcome of Check. Files are in collection order.
type Report struct {
	Files []FileResult
}

// RuleCount returns the total number of rule applications.
func (r *Report) RuleCount() int {
	n := 0
	for _, f := range r.Files {
		n += f.RuleSet.Len()
	}
	return n
}

// Check collects the files under paths, warms the configuration cache and
// resolves each file's rule set. A fatal configuration error aborts the
// run.
func (e *Engine) Check(ctx context.Context, paths []string) (*Report, error) {
	files, err := e.Collect(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := e.configs.Warm(ctx, files); err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n := e.configs.Lookup(f)
			if n == nil {
				return fmt.Errorf("%s: %w", f, ErrConfigChanged)
			}
			defer n.Release()
			results[i] = FileResult{
				Path:    f,
				Config:  n.Nearest().Path,
				RuleSet: e.rulesets.Get(n.Effective(), f),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("check complete", "files", len(results), "configs", e.configs.Len())
	return &Report{Files: results}, nil
}

// Resolve returns the compiled node for a file or directory, compiling it
// if needed. The caller releases the node.
func (e *Engine) Resolve(path string) (*compiled.Node, error) {
	return e.configs.Resolve(path)
}

// UnknownKeys lists rule keys in n's merged document that no rule accepts.
func (e *Engine) UnknownKeys(n *compiled.Node) []string {
	return e.materializer.UnknownKeys(n.Merged())
}

// UnknownRules lists rule names in n's merged document that are not registered.
func (e *Engine) UnknownRules(n *compiled.Node) []string {
	return e.materializer.UnknownRules(n.Merged())
}

// Sync writes the sidecar snapshots for projectDir.
func (e *Engine) Sync(ctx context.Context, projectDir string) ([]sidecar.IndexEntry, error) {
	return e.syncer.Sync(ctx, projectDir)
}

// Invalidate drops cached state after configuration files changed: every
// entry that read a changed file and every entry at or below the directory
// of a changed path, which covers newly created files.
// It must not run concurrently with Check.
func (e *Engine) Invalidate(changed []string) {
	dirs := make([]string, 0, len(changed))
	for _, p := range changed {
		if abs, err := filepath.Abs(p); err == nil {
			dirs = append(dirs, filepath.Dir(abs))
		}
	}
	dropped := e.configs.InvalidateStale()
	dropped = append(dropped, e.configs.InvalidateTree(dirs...)...)
	e.rulesets.Clear()
	e.inherit.Purge()
	e.logger.Debug("invalidated configuration", "changed", len(changed), "dropped", len(dropped))
}

// Close releases every cached configuration.
func (e *Engine) Close() error {
	e.configs.Clear()
	e.rulesets.Clear()
	e.inherit.Purge()
	return nil
}
