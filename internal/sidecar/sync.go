package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/config/compiled"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"golang.org/x/sync/errgroup"
)

// SyncConfig configures a Syncer.
type SyncConfig struct {
	Compiler *compiled.Compiler
	Workers  int
	Logger   *slog.Logger
	// Now stamps index entries. Defaults to time.Now.
	Now func() time.Time
}

// Syncer compiles every configuration file of a project and writes the
// resolved snapshots and the index.
type Syncer struct {
	compiler *compiled.Compiler
	workers  int
	logger   *slog.Logger
	now      func() time.Time
}

// NewSyncer creates a syncer.
func NewSyncer(cfg SyncConfig) *Syncer {
	s := &Syncer{compiler: cfg.Compiler, workers: cfg.Workers, logger: cfg.Logger, now: cfg.Now}
	if s.workers <= 0 {
		s.workers = 4
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Sync writes a snapshot for every directory of projectDir holding a
// configuration file and replaces the index. projectDir must have been
// initialized. The first compile error aborts the sync before anything is
// written.
func (s *Syncer) Sync(ctx context.Context, projectDir string) ([]IndexEntry, error) {
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}
	if !Initialized(projectDir) {
		return nil, ErrNotInitialized
	}

	sources, err := FindConfigFiles(projectDir)
	if err != nil {
		return nil, err
	}

	snapshots := make([]*Resolved, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := s.compiler.Compile(filepath.Dir(src), nil)
			if err != nil {
				return err
			}
			defer n.Release()
			snapshots[i] = Snapshot(n.Effective())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	outDir := ConfigsDir(projectDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}

	ts := s.now().UTC().Format(time.RFC3339)
	entries := make([]IndexEntry, 0, len(sources))
	for i, src := range sources {
		out := filepath.Join(outDir, fmt.Sprintf("%04d_%s.json", i+1, sanitizeName(src)))
		if err := writeJSON(out, snapshots[i]); err != nil {
			return nil, err
		}
		entries = append(entries, IndexEntry{Src: src, Out: out, Timestamp: ts})
		s.logger.Debug("wrote sidecar snapshot", "src", src, "out", out)
	}

	if err := writeJSON(IndexPath(projectDir), entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindConfigFiles returns the configuration files under projectDir, one
// per directory, skipping ignored directories. Results are sorted.
func FindConfigFiles(projectDir string) ([]string, error) {
	glob := "**/{" + strings.Join(config.FileNames, ",") + "}"
	matches, err := doublestar.Glob(os.DirFS(projectDir), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", projectDir, err)
	}

	byDir := make(map[string]string)
	for _, m := range matches {
		dir := path.Dir(m)
		if ignored(dir) {
			continue
		}
		// FileNames is in priority order
		if cur, ok := byDir[dir]; ok && path.Base(cur) == config.DotFileName {
			continue
		}
		byDir[dir] = m
	}

	out := make([]string, 0, len(byDir))
	for _, m := range byDir {
		out = append(out, filepath.Join(projectDir, filepath.FromSlash(m)))
	}
	slices.Sort(out)
	return out, nil
}

func ignored(dir string) bool {
	if dir == "." {
		return false
	}
	for _, seg := range strings.Split(dir, "/") {
		if config.IsIgnoredDir(seg) {
			return true
		}
	}
	return false
}

// Snapshot converts an effective configuration into the snapshot shape.
// Global patterns defined by an ancestor file are written a second time,
// joined onto that file's directory, since snapshots are matched against
// the source directory only.
func Snapshot(cfg *materialize.EffectiveConfig) *Resolved {
	include, exclude := cfg.GlobalAnchored()
	r := &Resolved{
		General: Scope{
			Include: append(slices.Clip(cfg.GlobalInclude()), include...),
			Exclude: append(slices.Clip(cfg.GlobalExclude()), exclude...),
		},
		Categories: make(map[string]CategoryScope),
	}
	for _, name := range cfg.Categories() {
		r.Categories[name] = CategoryScope{
			Scope: Scope{Include: cfg.CategoryInclude(name), Exclude: cfg.CategoryExclude(name)},
			Rules: make(map[string]Scope),
		}
	}
	for _, rule := range cfg.Rules() {
		cat := r.Categories[rule.Descriptor.Category]
		cat.Rules[rule.Descriptor.Name] = Scope{Include: rule.Include, Exclude: rule.Exclude}
	}
	return r
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._\-]`)
	underscores = regexp.MustCompile(`_{2,}`)
)

// sanitizeName turns a path into a file name fragment.
func sanitizeName(p string) string {
	s := strings.TrimPrefix(filepath.ToSlash(p), "/")
	s = unsafeChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeAtomic(path, append(data, '\n'))
}
