// Package sidecar reads and writes the .leukocyte directory: pre-resolved
// per-directory include/exclude snapshots that file collection can use
// instead of compiling the configuration cascade.
//
// Layout:
//
//	.leukocyte/
//	  README
//	  gitignore.template
//	  index.json            [{"src": ..., "out": ..., "ts": ...}]
//	  configs/NNNN_<src>.json
package sidecar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qraqras/leukocyte-sub000/internal/config"
)

// ErrNotInitialized is returned when the .leukocyte directory is missing.
var ErrNotInitialized = errors.New(".leukocyte not initialized; run 'leuko init' first")

const readme = `# .leukocyte

This directory stores generated Leukocyte artifacts (resolved RuboCop
configurations in JSON form).

To generate them, run:

  leuko sync

The repository's .gitignore should exclude the generated files under
.leukocyte/configs/ and .leukocyte/index.json.
`

const gitignoreTemplate = `# Ignore generated Leukocyte artifacts
.leukocyte/configs/
.leukocyte/index.json
.leukocyte/*.tmp
`

// Dir returns the sidecar directory of projectDir.
func Dir(projectDir string) string {
	return filepath.Join(projectDir, config.SidecarDir)
}

// IndexPath returns the index file of projectDir.
func IndexPath(projectDir string) string {
	return filepath.Join(Dir(projectDir), config.SidecarIndexFile)
}

// ConfigsDir returns the directory holding resolved snapshots.
func ConfigsDir(projectDir string) string {
	return filepath.Join(Dir(projectDir), config.SidecarConfigsDir)
}

// InitOptions configures Init.
type InitOptions struct {
	// ApplyGitignore appends the ignore rules to the project's .gitignore.
	ApplyGitignore bool
}

// Init creates the sidecar directory with its README and gitignore
// template. Existing files are rewritten; generated artifacts are kept.
func Init(projectDir string, opts InitOptions) (string, error) {
	dir := Dir(projectDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := writeAtomic(filepath.Join(dir, "README"), []byte(readme)); err != nil {
		return "", err
	}
	if err := writeAtomic(filepath.Join(dir, "gitignore.template"), []byte(gitignoreTemplate)); err != nil {
		return "", err
	}

	if opts.ApplyGitignore {
		path := filepath.Join(projectDir, ".gitignore")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("updating %s: %w", path, err)
		}
		_, werr := f.WriteString("\n" + gitignoreTemplate)
		if err := errors.Join(werr, f.Close()); err != nil {
			return "", fmt.Errorf("updating %s: %w", path, err)
		}
	}
	return dir, nil
}

// Initialized reports whether projectDir has a sidecar directory.
func Initialized(projectDir string) bool {
	info, err := os.Stat(Dir(projectDir))
	return err == nil && info.IsDir()
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
