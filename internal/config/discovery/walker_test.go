package discovery

import (
	"path/filepath"
	"testing"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/testutil"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRules map[string][]string

func (f fakeRules) Has(category, name string) bool {
	for _, n := range f[category] {
		if n == name {
			return true
		}
	}
	return false
}

func (f fakeRules) HasCategory(category string) bool {
	_, ok := f[category]
	return ok
}

func newTestWalker(t *testing.T) *Walker {
	t.Helper()
	cache, err := NewInheritCache(16)
	require.NoError(t, err)
	logger := testutil.NewTestLogger(t)
	rules := fakeRules{"Layout": {"LineLength", "IndentationWidth"}, "Lint": {"Debugger"}}
	return NewWalker(NewResolver(cache, logger), rules, logger)
}

func sourcePaths(res *Result) []string {
	out := make([]string, len(res.Sources))
	for i, s := range res.Sources {
		out[i] = s.Path
	}
	return out
}

func TestWalker_UpwardChain(t *testing.T) {
	dir := tempDir(t)
	top := writeFile(t, dir, ".rubocop.yml", "root: true\nAllCops:\n  Exclude: [vendor/**]\nLayout/LineLength:\n  Max: 100\n")
	mid := writeFile(t, dir, "app/.rubocop.yml", "Layout/LineLength:\n  Max: 120\n")
	target := writeFile(t, dir, "app/models/user.rb", "")

	w := newTestWalker(t)
	res, err := w.Discover(target, "", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []string{top, mid}, sourcePaths(res))
	assert.Equal(t, mid, res.Nearest.Path)

	maxNode := res.Merged.Get("Layout/LineLength").Get("Max")
	v, ok := maxNode.Int()
	require.True(t, ok)
	assert.Equal(t, 120, v, "nearer file wins")
	assert.Equal(t, []string{"vendor/**"}, res.Merged.Get(config.KeyAllCops).Get(config.KeyExclude).Strings())
}

func TestWalker_RootStopsDiscovery(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, ".rubocop.yml", "Lint/Debugger:\n  Enabled: false\n")
	sub := writeFile(t, dir, "sub/.rubocop.yml", "root: true\nLayout/LineLength:\n  Max: 90\n")

	res, err := newTestWalker(t).Discover(filepath.Join(dir, "sub"), "", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []string{sub}, sourcePaths(res))
	assert.Nil(t, res.Merged.Get("Lint/Debugger"))
}

func TestWalker_PrefersDotFile(t *testing.T) {
	dir := tempDir(t)
	dot := writeFile(t, dir, ".rubocop.yml", "root: true\n")
	writeFile(t, dir, "rubocop.yml", "root: true\n")

	path, ok := FindConfigFile(dir)
	require.True(t, ok)
	assert.Equal(t, dot, path)

	plain := tempDir(t)
	p := writeFile(t, plain, "rubocop.yml", "root: true\n")
	path, ok = FindConfigFile(plain)
	require.True(t, ok)
	assert.Equal(t, p, path)

	_, ok = FindConfigFile(tempDir(t))
	assert.False(t, ok)
}

func TestWalker_Override(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, ".rubocop.yml", "Lint/Debugger:\n  Enabled: false\n")
	override := writeFile(t, dir, "custom/ci.yml", "Layout/LineLength:\n  Max: 150\n")

	res, err := newTestWalker(t).Discover(filepath.Join(dir, "a.rb"), override, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []string{override}, sourcePaths(res))
	assert.Nil(t, res.Merged.Get("Lint/Debugger"))

	_, err = newTestWalker(t).Discover(dir, filepath.Join(dir, "missing.yml"), nil)
	assert.ErrorIs(t, err, config.ErrIO)
}

func TestWalker_NoConfig(t *testing.T) {
	dir := tempDir(t)
	res, err := NewWalker(nil, nil, nil).DiscoverLocal(dir, nil)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestWalker_UnparseableIsFatal(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, ".rubocop.yml", "root: true\n")
	writeFile(t, dir, "sub/.rubocop.yml", "Layout: [\n")

	_, err := newTestWalker(t).Discover(filepath.Join(dir, "sub", "x.rb"), "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParse)
	assert.True(t, config.IsFatal(err))
}

func TestWalker_InheritedParentsComeFirst(t *testing.T) {
	dir := tempDir(t)
	base := writeFile(t, dir, "base.yml", "Layout/LineLength:\n  Max: 70\n  Exclude: [a.rb]\n")
	cfg := writeFile(t, dir, ".rubocop.yml", "root: true\ninherit_from: base.yml\nLayout/LineLength:\n  Exclude: [b.rb]\n")

	res, err := newTestWalker(t).Discover(dir, "", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []string{base, cfg}, sourcePaths(res))
	rule := res.Merged.Get("Layout/LineLength")
	v, _ := rule.Get("Max").Int()
	assert.Equal(t, 70, v)
	assert.Equal(t, []string{"a.rb", "b.rb"}, rule.Get(config.KeyExclude).Strings())
}

func TestWalker_NestedRulesAreHoisted(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, ".rubocop.yml", "root: true\nLayout:\n  LineLength:\n    Max: 99\n  Exclude: [gen/**]\ngeneral:\n  Exclude: [tmp/**]\n")

	res, err := newTestWalker(t).Discover(dir, "", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	v, ok := res.Merged.Get("Layout/LineLength").Get("Max").Int()
	require.True(t, ok)
	assert.Equal(t, 99, v)
	assert.Equal(t, []string{"gen/**"}, res.Merged.Get("Layout").Get(config.KeyExclude).Strings())
	assert.Equal(t, []string{"tmp/**"}, res.Merged.Get(config.KeyAllCops).Get(config.KeyExclude).Strings())
}

func TestWalker_Idempotent(t *testing.T) {
	dir := tempDir(t)
	writeFile(t, dir, "shared.yml", "AllCops:\n  Include: ['**/*.rb']\n")
	writeFile(t, dir, ".rubocop.yml", "root: true\ninherit_from: shared.yml\nLint/Debugger:\n  Enabled: false\n")
	writeFile(t, dir, "lib/.rubocop.yml", "Layout/IndentationWidth:\n  Width: 4\n")
	target := filepath.Join(dir, "lib", "x.rb")

	w := newTestWalker(t)
	arena := document.NewArena()
	defer arena.Release()

	first, err := w.Discover(target, "", arena)
	require.NoError(t, err)
	second, err := w.Discover(target, "", arena)
	require.NoError(t, err)

	assert.True(t, first.Merged.Equal(second.Merged))
	assert.Equal(t, first.Sources, second.Sources)
}

func TestStartDir(t *testing.T) {
	dir := tempDir(t)
	file := writeFile(t, dir, "a/b.rb", "")

	got, err := StartDir(file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a"), got)

	got, err = StartDir(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a"), got)

	got, err = StartDir(filepath.Join(dir, "missing", "c.rb"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "missing"), got)
}
