package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
	"github.com/qraqras/leukocyte-sub000/internal/testutil"
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	testutil.WriteFile(t, root, ".rubocop.yml", `root: true
AllCops:
  Exclude: [vendor/**]
Layout/LineLength:
  Max: 100
`)
	testutil.WriteFile(t, root, "app/.rubocop.yml", `Lint/Debugger:
  Enabled: false
Style/StringLiterals:
  Exclude: [legacy/**]
`)
	testutil.WriteFile(t, root, "app/models/user.rb", "")
	testutil.WriteFile(t, root, "app/legacy/old.rb", "")
	testutil.WriteFile(t, root, "lib/tool.rb", "")
	testutil.WriteFile(t, root, "vendor/gem.rb", "")
	return root
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	cfg.Logger = testutil.NewTestLogger(t)
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestEngine_Check(t *testing.T) {
	root := newProject(t)
	e := newEngine(t, Config{Workers: 4})

	report, err := e.Check(context.Background(), []string{root})
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	byPath := make(map[string]FileResult)
	var order []string
	for _, f := range report.Files {
		byPath[f.Path] = f
		order = append(order, f.Path)
	}
	assert.IsIncreasing(t, order, "collection order")

	lib := byPath[filepath.Join(root, "lib", "tool.rb")]
	assert.Equal(t, filepath.Join(root, ".rubocop.yml"), lib.Config)
	assert.True(t, lib.RuleSet.Has("Lint/Debugger"))
	assert.NotEmpty(t, lib.RuleSet.For(core.NodeCall))

	user := byPath[filepath.Join(root, "app", "models", "user.rb")]
	assert.Equal(t, filepath.Join(root, "app", ".rubocop.yml"), user.Config)
	assert.False(t, user.RuleSet.Has("Lint/Debugger"))
	assert.True(t, user.RuleSet.Has("Style/StringLiterals"))

	old := byPath[filepath.Join(root, "app", "legacy", "old.rb")]
	assert.False(t, old.RuleSet.Has("Style/StringLiterals"))
	assert.True(t, old.RuleSet.Has("Layout/LineLength"))

	assert.Equal(t, user.RuleSet.Len()+lib.RuleSet.Len()+old.RuleSet.Len(), report.RuleCount())
}

func TestEngine_CheckFatalError(t *testing.T) {
	root := newProject(t)
	testutil.WriteFile(t, root, "lib/.rubocop.yml", "inherit_from: missing_*.yml\n")
	e := newEngine(t, Config{})

	_, err := e.Check(context.Background(), []string{root})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrPattern)
	assert.True(t, config.IsFatal(err))
}

func TestEngine_ResolveAndInvalidate(t *testing.T) {
	root := newProject(t)
	e := newEngine(t, Config{})

	n, err := e.Resolve(filepath.Join(root, "lib", "tool.rb"))
	require.NoError(t, err)
	assert.Empty(t, e.UnknownKeys(n))
	n.Release()

	cfg := testutil.WriteFile(t, root, ".rubocop.yml", "root: true\nLayout/LineLength:\n  Max: 60\n  Maxx: 1\n")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(cfg, later, later))
	e.Invalidate([]string{cfg})

	n, err = e.Resolve(filepath.Join(root, "lib"))
	require.NoError(t, err)
	defer n.Release()
	assert.Equal(t, []string{"Layout/LineLength.Maxx"}, e.UnknownKeys(n))
}

func TestEngine_InvalidatePicksUpNewConfig(t *testing.T) {
	root := newProject(t)
	e := newEngine(t, Config{})
	tool := filepath.Join(root, "lib", "tool.rb")

	find := func(report *Report) FileResult {
		t.Helper()
		for _, f := range report.Files {
			if f.Path == tool {
				return f
			}
		}
		require.FailNow(t, "missing result", tool)
		return FileResult{}
	}

	report, err := e.Check(context.Background(), []string{root})
	require.NoError(t, err)
	before := find(report)
	assert.Equal(t, filepath.Join(root, ".rubocop.yml"), before.Config)
	assert.True(t, before.RuleSet.Has("Lint/Debugger"))

	created := testutil.WriteFile(t, root, "lib/.rubocop.yml", "Lint/Debugger:\n  Enabled: false\n")
	e.Invalidate([]string{created})

	report, err = e.Check(context.Background(), []string{root})
	require.NoError(t, err)
	after := find(report)
	assert.Equal(t, created, after.Config)
	assert.False(t, after.RuleSet.Has("Lint/Debugger"))
	assert.True(t, after.RuleSet.Has("Layout/LineLength"))
}

func TestEngine_Sidecar(t *testing.T) {
	root := newProject(t)
	_, err := sidecar.Init(root, sidecar.InitOptions{})
	require.NoError(t, err)

	entries, err := newEngine(t, Config{}).Sync(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	e := newEngine(t, Config{UseSidecar: true, ProjectDir: root})
	files, err := e.Collect(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.NotContains(t, files, filepath.Join(root, "vendor", "gem.rb"))
}

func TestEngine_ConfigOverride(t *testing.T) {
	root := newProject(t)
	override := testutil.WriteFile(t, root, "ci/strict.yml", "Layout/LineLength:\n  Enabled: false\n")
	e := newEngine(t, Config{ConfigPath: override})

	report, err := e.Check(context.Background(), []string{filepath.Join(root, "lib", "tool.rb")})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, override, report.Files[0].Config)
	assert.False(t, report.Files[0].RuleSet.Has("Layout/LineLength"))
}
