package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qraqras/leukocyte-sub000/internal/testutil"
	"github.com/stretchr/testify/require"
)

// writeFile creates dir/rel with content, creating parent directories.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	return testutil.WriteFile(t, dir, rel, content)
}

// touch moves path's modification time forward by d.
func touch(t *testing.T, path string, d time.Duration) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	mt := info.ModTime().Add(d)
	require.NoError(t, os.Chtimes(path, mt, mt))
}

// tempDir returns a symlink-free temporary directory.
func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}
