package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qraqras/leukocyte-sub000/internal/pattern"
)

// IndexEntry is one element of index.json.
type IndexEntry struct {
	Src       string `json:"src"`
	Out       string `json:"out"`
	Timestamp string `json:"ts,omitempty"`
}

// Scope is an include/exclude pair as stored in a snapshot.
type Scope struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// CategoryScope is a category's scope plus its rules' scopes.
type CategoryScope struct {
	Scope
	Rules map[string]Scope `json:"rules,omitempty"`
}

// Resolved is the content of one snapshot file.
type Resolved struct {
	General    Scope                    `json:"general"`
	Categories map[string]CategoryScope `json:"categories,omitempty"`
}

// Entry is a loaded index entry with its compiled global scope.
type Entry struct {
	IndexEntry
	Resolved

	srcDir  string
	include *pattern.Set
	exclude *pattern.Set
}

// SrcDir returns the directory of the source configuration file.
func (e *Entry) SrcDir() string { return e.srcDir }

// Allows performs the global-scope check for path.
func (e *Entry) Allows(path string) bool {
	if !e.include.Empty() && !e.include.Match(path) {
		return false
	}
	return !e.exclude.Match(path)
}

// Index is a loaded index.json.
type Index struct {
	entries []*Entry
}

// Entries returns the loaded entries in index order.
func (ix *Index) Entries() []*Entry { return ix.entries }

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// LoadIndex reads the index at path and every snapshot it references.
// A missing index yields an empty index. Unreadable snapshots are logged
// and skipped.
func LoadIndex(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("sidecar index not found", "path", path)
		return &Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sidecar index: %w", err)
	}

	var raw []IndexEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing sidecar index %s: %w", path, err)
	}

	ix := &Index{entries: make([]*Entry, 0, len(raw))}
	for _, ie := range raw {
		if ie.Src == "" || ie.Out == "" {
			continue
		}
		res, err := LoadResolved(ie.Out)
		if err != nil {
			logger.Warn("skipping sidecar snapshot", "out", ie.Out, "err", err)
			continue
		}
		srcDir := filepath.Dir(ie.Src)
		ix.entries = append(ix.entries, &Entry{
			IndexEntry: ie,
			Resolved:   *res,
			srcDir:     srcDir,
			include:    pattern.NewSet(srcDir, res.General.Include, logger),
			exclude:    pattern.NewSet(srcDir, res.General.Exclude, logger),
		})
	}
	return ix, nil
}

// LoadResolved reads one snapshot file.
func LoadResolved(path string) (*Resolved, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Resolved
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &r, nil
}

// Lookup returns the entry whose source directory is the longest
// path-boundary prefix of path, or nil.
func (ix *Index) Lookup(path string) *Entry {
	var best *Entry
	for _, e := range ix.entries {
		if !hasDirPrefix(path, e.srcDir) {
			continue
		}
		if best == nil || len(e.srcDir) > len(best.srcDir) {
			best = e
		}
	}
	return best
}

// Allows reports whether the entry covering path admits it. Paths with no
// covering entry are allowed.
func (ix *Index) Allows(path string) bool {
	e := ix.Lookup(path)
	return e == nil || e.Allows(path)
}

func hasDirPrefix(path, dir string) bool {
	if dir == "" || dir == "." {
		return false
	}
	if !strings.HasPrefix(path, dir) {
		return false
	}
	return len(path) == len(dir) || path[len(dir)] == filepath.Separator || strings.HasSuffix(dir, string(filepath.Separator))
}
