package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	for _, name := range []string{"index", "check", "config", "config-show", "doctor", "sync"} {
		assert.FileExists(t, filepath.Join(dir, name+".md"))
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "[`check`](/cli/check)")
	assert.Contains(t, string(index), "`--use-sidecar`")

	show, err := os.ReadFile(filepath.Join(dir, "config-show.md"))
	require.NoError(t, err)
	assert.Contains(t, string(show), "# leuko config show")
	assert.Contains(t, string(show), "`--category`")
}

func TestGenerateRuleDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRuleDocs(dir))

	data, err := os.ReadFile(filepath.Join(dir, "rules.md"))
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "## Layout")
	assert.Contains(t, doc, "### Lint/Debugger")
	assert.Contains(t, doc, "`Max`")
	assert.Contains(t, doc, "| `warning` | `W` |")
}

func TestCleanExample(t *testing.T) {
	assert.Equal(t, "leuko check\n  nested", cleanExample("    leuko check\n      nested\n"))
	assert.Equal(t, "leuko", cleanExample("leuko"))
}

func TestMarkdownWriter_Table(t *testing.T) {
	w := NewMarkdownWriter()
	w.Table([]string{"A", "B"}, [][]string{{"x|y", "z"}})
	assert.Equal(t, "| A | B |\n| --- | --- |\n| x\\|y | z |\n\n", string(w.Bytes()))
}
