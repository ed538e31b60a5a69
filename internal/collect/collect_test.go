package collect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/config/compiled"
	"github.com/qraqras/leukocyte-sub000/internal/config/discovery"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
	"github.com/qraqras/leukocyte-sub000/internal/testutil"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T) *compiled.Compiler {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	registry := rules.NewRegistry()
	return compiled.NewCompiler(compiled.Config{
		Walker:       discovery.NewWalker(nil, registry, logger),
		Materializer: materialize.New(registry, logger),
		Logger:       logger,
	})
}

func fixture(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	testutil.WriteFile(t, root, ".rubocop.yml", "root: true\nAllCops:\n  Exclude: [db/schema.rb, 'generated/**']\n")
	testutil.WriteFile(t, root, "app/models/user.rb", "")
	testutil.WriteFile(t, root, "app/README.md", "")
	testutil.WriteFile(t, root, "lib/tasks/db.rake", "")
	testutil.WriteFile(t, root, "Gemfile", "")
	testutil.WriteFile(t, root, "leuko.gemspec", "")
	testutil.WriteFile(t, root, "db/schema.rb", "")
	testutil.WriteFile(t, root, "generated/x.rb", "")
	testutil.WriteFile(t, root, "vendor/bundle/gem.rb", "")
	testutil.WriteFile(t, root, "node_modules/pkg/x.rb", "")
	testutil.WriteFile(t, root, ".git/hooks/x.rb", "")
	testutil.WriteFile(t, root, "sub/.rubocop.yml", "AllCops:\n  Exclude: [skip/**]\n")
	testutil.WriteFile(t, root, "sub/keep.rb", "")
	testutil.WriteFile(t, root, "sub/skip/a.rb", "")
	testutil.WriteFile(t, root, "sub/db/schema.rb", "")
	return root
}

func rel(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestCollect_Directory(t *testing.T) {
	root := fixture(t)
	c := New(Config{Compiler: newCompiler(t), Logger: testutil.NewTestLogger(t)})

	files, err := c.Collect(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Gemfile",
		"app/models/user.rb",
		"leuko.gemspec",
		"lib/tasks/db.rake",
		"sub/keep.rb",
	}, rel(t, root, files))
}

func TestCollect_SubdirectoryRootDiscoversUpward(t *testing.T) {
	root := fixture(t)
	c := New(Config{Compiler: newCompiler(t)})

	files, err := c.Collect(context.Background(), []string{filepath.Join(root, "sub")})
	require.NoError(t, err)
	assert.Equal(t, []string{"sub/keep.rb"}, rel(t, root, files))
}

func TestCollect_AncestorExclusionSurvivesLocalConfig(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	testutil.WriteFile(t, root, ".rubocop.yml", "root: true\nAllCops:\n  Exclude: [lib/skip.rb]\n")
	testutil.WriteFile(t, root, "lib/keep.rb", "")
	testutil.WriteFile(t, root, "lib/skip.rb", "")
	c := New(Config{Compiler: newCompiler(t)})

	files, err := c.Collect(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/keep.rb"}, rel(t, root, files))

	// a directory that only tunes a rule keeps its ancestor's exclusions
	testutil.WriteFile(t, root, "lib/.rubocop.yml", "Layout/LineLength:\n  Max: 120\n")
	for _, start := range []string{root, filepath.Join(root, "lib")} {
		files, err = c.Collect(context.Background(), []string{start})
		require.NoError(t, err)
		assert.Equal(t, []string{"lib/keep.rb"}, rel(t, root, files), "collecting from %s", start)
	}
}

func TestCollect_ExplicitFilesAreKept(t *testing.T) {
	root := fixture(t)
	c := New(Config{Compiler: newCompiler(t)})

	schema := filepath.Join(root, "db", "schema.rb")
	readme := filepath.Join(root, "app", "README.md")
	files, err := c.Collect(context.Background(), []string{readme, schema, schema, filepath.Join(root, "app")})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/README.md", "app/models/user.rb", "db/schema.rb"}, rel(t, root, files))
}

func TestCollect_MissingPath(t *testing.T) {
	c := New(Config{Compiler: newCompiler(t)})
	_, err := c.Collect(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	assert.ErrorIs(t, err, config.ErrIO)
}

func TestCollect_FatalConfigError(t *testing.T) {
	root := fixture(t)
	testutil.WriteFile(t, root, "app/.rubocop.yml", "AllCops: [\n")
	c := New(Config{Compiler: newCompiler(t)})

	_, err := c.Collect(context.Background(), []string{root})
	assert.ErrorIs(t, err, config.ErrParse)
}

func TestCollect_Cancelled(t *testing.T) {
	root := fixture(t)
	c := New(Config{Compiler: newCompiler(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollect_CustomPatterns(t *testing.T) {
	root := fixture(t)
	c := New(Config{Compiler: newCompiler(t), Patterns: []string{"**/*.md"}})

	files, err := c.Collect(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/README.md"}, rel(t, root, files))
}

func TestCollect_Sidecar(t *testing.T) {
	root := fixture(t)
	_, err := sidecar.Init(root, sidecar.InitOptions{})
	require.NoError(t, err)
	_, err = sidecar.NewSyncer(sidecar.SyncConfig{Compiler: newCompiler(t)}).Sync(context.Background(), root)
	require.NoError(t, err)
	ix, err := sidecar.LoadIndex(sidecar.IndexPath(root), nil)
	require.NoError(t, err)

	c := New(Config{Sidecar: ix})
	files, err := c.Collect(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Gemfile",
		"app/models/user.rb",
		"leuko.gemspec",
		"lib/tasks/db.rake",
		"sub/keep.rb",
	}, rel(t, root, files))
}
