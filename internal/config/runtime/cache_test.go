package runtime

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/config/compiled"
	"github.com/qraqras/leukocyte-sub000/internal/config/discovery"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/qraqras/leukocyte-sub000/internal/testutil"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, workers int) *Cache {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	registry := rules.NewRegistry()
	inherit, err := discovery.NewInheritCache(0)
	require.NoError(t, err)
	compiler := compiled.NewCompiler(compiled.Config{
		Walker:       discovery.NewWalker(discovery.NewResolver(inherit, logger), registry, logger),
		Materializer: materialize.New(registry, logger),
		Logger:       logger,
	})
	c := New(Config{Compiler: compiler, Workers: workers, Logger: logger})
	t.Cleanup(c.Clear)
	return c
}

// project lays out a small tree and returns its root and source files.
func project(t *testing.T) (string, []string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	testutil.WriteFile(t, root, ".rubocop.yml", "root: true\nAllCops:\n  Exclude: [vendor/**]\n")
	testutil.WriteFile(t, root, "app/.rubocop.yml", "Layout/LineLength:\n  Max: 120\n")
	files := []string{
		testutil.WriteFile(t, root, "app/a.rb", ""),
		testutil.WriteFile(t, root, "app/b.rb", ""),
		testutil.WriteFile(t, root, "app/models/c.rb", ""),
		testutil.WriteFile(t, root, "lib/d.rb", ""),
		testutil.WriteFile(t, root, "e.rb", ""),
	}
	return root, files
}

func TestCache_WarmAndLookup(t *testing.T) {
	root, files := project(t)
	c := newCache(t, 4)

	require.NoError(t, c.Warm(context.Background(), files))
	assert.Equal(t, 4, c.Len(), "one entry per distinct directory")

	n := c.Lookup(filepath.Join(root, "app", "a.rb"))
	require.NotNil(t, n)
	defer n.Release()
	assert.Equal(t, filepath.Join(root, "app"), n.Dir())
	assert.Equal(t, filepath.Join(root, "app", ".rubocop.yml"), n.Nearest().Path)

	same := c.Lookup(filepath.Join(root, "app"))
	require.NotNil(t, same)
	defer same.Release()
	assert.Same(t, n, same)

	assert.Nil(t, c.Lookup(filepath.Join(root, "spec", "x.rb")), "never compiles on lookup")
	assert.Equal(t, 4, c.Len())
}

func TestCache_LookupMissesStaleEntry(t *testing.T) {
	root, files := project(t)
	c := newCache(t, 2)
	require.NoError(t, c.Warm(context.Background(), files))

	target := filepath.Join(root, "app", "a.rb")
	n := c.Lookup(target)
	require.NotNil(t, n)
	n.Release()

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "app", ".rubocop.yml"), later, later))
	assert.Nil(t, c.Lookup(target))

	// ancestors count too
	lib := filepath.Join(root, "lib", "d.rb")
	require.NoError(t, os.Chtimes(filepath.Join(root, ".rubocop.yml"), later, later))
	assert.Nil(t, c.Lookup(lib))

	dropped := c.InvalidateStale()
	assert.Len(t, dropped, 4)
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.Warm(context.Background(), files))
	n = c.Lookup(target)
	require.NotNil(t, n)
	n.Release()
}

func TestCache_WarmFatalError(t *testing.T) {
	root, files := project(t)
	testutil.WriteFile(t, root, "lib/.rubocop.yml", "Layout: [\n")
	c := newCache(t, 2)

	err := c.Warm(context.Background(), files)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParse)
}

func TestCache_Resolve(t *testing.T) {
	root, _ := project(t)
	c := newCache(t, 1)

	n, err := c.Resolve(filepath.Join(root, "app", "a.rb"))
	require.NoError(t, err)
	defer n.Release()
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int32(2), n.Refs(), "cache and caller")

	again, err := c.Resolve(filepath.Join(root, "app", "b.rb"))
	require.NoError(t, err)
	defer again.Release()
	assert.Same(t, n, again)
}

func TestCache_InvalidateAndClear(t *testing.T) {
	root, files := project(t)
	c := newCache(t, 2)
	require.NoError(t, c.Warm(context.Background(), files))

	n := c.Lookup(filepath.Join(root, "lib"))
	require.NotNil(t, n)

	c.Invalidate(filepath.Join(root, "lib"), filepath.Join(root, "missing"))
	assert.Equal(t, 3, c.Len())
	assert.Nil(t, c.Lookup(filepath.Join(root, "lib")))
	assert.NotNil(t, n.Effective(), "caller's reference keeps the node alive")
	n.Release()

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidateTree(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []string
		dropped []string
	}{
		{name: "subtree", dirs: []string{"app"}, dropped: []string{"app", "app/models"}},
		{name: "leaf", dirs: []string{"app/models"}, dropped: []string{"app/models"}},
		{name: "root", dirs: []string{"."}, dropped: []string{".", "app", "app/models", "lib"}},
		{name: "sibling prefix", dirs: []string{"ap"}, dropped: nil},
		{name: "unrelated", dirs: []string{"vendor"}, dropped: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, files := project(t)
			c := newCache(t, 2)
			require.NoError(t, c.Warm(context.Background(), files))
			require.Equal(t, 4, c.Len())

			dirs := make([]string, len(tt.dirs))
			for i, d := range tt.dirs {
				dirs[i] = filepath.Join(root, d)
			}
			var want []string
			for _, d := range tt.dropped {
				want = append(want, filepath.Join(root, d))
			}

			got := c.InvalidateTree(dirs...)
			assert.ElementsMatch(t, want, got)
			assert.Equal(t, 4-len(want), c.Len())
			for _, d := range want {
				assert.Nil(t, c.Lookup(d))
			}
		})
	}
}

func TestCache_ConcurrentWarmAndRead(t *testing.T) {
	root, files := project(t)
	// duplicate files so several workers race on the same directory
	var many []string
	for range 20 {
		many = append(many, files...)
	}

	c := newCache(t, 8)
	require.NoError(t, c.Warm(context.Background(), many))
	assert.Equal(t, 4, c.Len())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, f := range files {
				n := c.Lookup(f)
				if assert.NotNil(t, n) {
					_, ok := n.Effective().Rule("Layout/LineLength")
					assert.True(t, ok)
					n.Release()
				}
			}
		}()
	}
	wg.Wait()

	n := c.Lookup(filepath.Join(root, "e.rb"))
	require.NotNil(t, n)
	assert.Equal(t, int32(2), n.Refs(), "lookups released their references")
	n.Release()
}

func TestCache_WarmCancelled(t *testing.T) {
	_, files := project(t)
	c := newCache(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Warm(ctx, files), context.Canceled)
}
