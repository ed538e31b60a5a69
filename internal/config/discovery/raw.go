// Package discovery finds and loads the configuration files that apply to
// a path: the explicit override or the upward chain of .rubocop.yml files,
// plus everything they pull in through inherit_from.
package discovery

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// Source identifies one on-disk input and the modification time it had
// when it was read.
type Source struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
}

// Changed reports whether the file is gone or its modification time differs.
func (s Source) Changed() bool {
	info, err := os.Stat(s.Path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(s.ModTime)
}

// AnyChanged reports whether any source changed.
func AnyChanged(sources []Source) bool {
	for _, s := range sources {
		if s.Changed() {
			return true
		}
	}
	return false
}

// RawConfig is one parsed configuration file. It is shared by reference
// count between discovery results and the inheritance cache; the holder of
// the last reference releases the document.
type RawConfig struct {
	doc       *document.Node
	path      string
	canonical string
	modTime   time.Time
	refs      atomic.Int32
}

// LoadRaw reads and parses path. The returned config holds one reference.
// Loading is all-or-nothing: a malformed document yields a *config.ParseError.
func LoadRaw(path string) (*RawConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &config.IOError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &config.IOError{Path: abs, Err: err}
	}
	if info.IsDir() {
		return nil, &config.IOError{Path: abs, Err: errIsDirectory}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &config.IOError{Path: abs, Err: err}
	}
	doc, err := document.Parse(data, nil)
	if err != nil {
		return nil, &config.ParseError{Path: abs, Err: err}
	}
	doc.SetOrigin(filepath.Dir(abs))

	c := &RawConfig{
		doc:       doc,
		path:      abs,
		canonical: canonicalPath(abs),
		modTime:   info.ModTime(),
	}
	c.refs.Store(1)
	return c, nil
}

// Document returns the parsed document. It must not be modified.
func (c *RawConfig) Document() *document.Node { return c.doc }

// Path returns the absolute path the file was loaded from.
func (c *RawConfig) Path() string { return c.path }

// Canonical returns the symlink-resolved path.
func (c *RawConfig) Canonical() string { return c.canonical }

// Dir returns the directory containing the file.
func (c *RawConfig) Dir() string { return filepath.Dir(c.path) }

// ModTime returns the modification time observed at load.
func (c *RawConfig) ModTime() time.Time { return c.modTime }

// Source returns the file's Source record.
func (c *RawConfig) Source() Source {
	return Source{Path: c.path, ModTime: c.modTime}
}

// IsRoot reports whether the file stops upward discovery ("root: true";
// "yes" and "1" are accepted too).
func (c *RawConfig) IsRoot() bool {
	root := c.doc.Get(config.KeyRoot)
	if !root.IsScalar() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(root.Value)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// InheritFrom returns the raw inherit_from entries (scalar or sequence).
func (c *RawConfig) InheritFrom() []string {
	return c.doc.Get(config.KeyInheritFrom).Strings()
}

// Ref takes another reference and returns c.
func (c *RawConfig) Ref() *RawConfig {
	if c.refs.Add(1) <= 1 {
		panic("discovery: Ref on released RawConfig " + c.path)
	}
	return c
}

// Release drops one reference. The document is released with the last one.
func (c *RawConfig) Release() {
	switch n := c.refs.Add(-1); {
	case n == 0:
		c.doc = nil
	case n < 0:
		panic("discovery: RawConfig released too many times: " + c.path)
	}
}

// Refs returns the current reference count.
func (c *RawConfig) Refs() int32 { return c.refs.Load() }

func releaseAll(cfgs []*RawConfig) {
	for _, c := range cfgs {
		c.Release()
	}
}

func canonicalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
