// Package pattern compiles include/exclude globs into anchored regular
// expressions once, at materialization time, so that per-file filtering is
// a handful of regexp matches.
//
// Glob syntax:
//
//	**     any run of characters, including "/" ("**/" may also match nothing)
//	*      any run of characters except "/"
//	?      one character except "/"
//	[...]  a character class, copied through ("[!...]" negates)
//	{a,b}  alternation
package pattern

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/qraqras/leukocyte-sub000/internal/config"
)

// ToRegexp translates a glob into an anchored regular expression source.
func ToRegexp(glob string) string {
	var b strings.Builder
	b.Grow(len(glob)*2 + 2)
	b.WriteByte('^')

	braces := 0
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				i++
				if i+1 < len(glob) && glob[i+1] == '/' {
					i++
					b.WriteString("(?:.*/)?")
				} else {
					b.WriteString(".*")
				}
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteByte('[')
			b.WriteString(class)
			b.WriteByte(']')
			i += end + 1
		case '{':
			braces++
			b.WriteString("(?:")
		case '}':
			if braces == 0 {
				b.WriteString(`\}`)
				continue
			}
			braces--
			b.WriteByte(')')
		case ',':
			if braces > 0 {
				b.WriteByte('|')
				continue
			}
			b.WriteByte(',')
		case '.', '+', '(', ')', '|', '^', '$', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}

	b.WriteByte('$')
	return b.String()
}

// Pattern is one compiled glob.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// Compile compiles glob. A failure is reported as a *config.PatternError.
func Compile(glob string) (*Pattern, error) {
	re, err := regexp.Compile(ToRegexp(glob))
	if err != nil {
		return nil, &config.PatternError{Pattern: glob, Reason: "does not compile", Err: err}
	}
	return &Pattern{glob: glob, re: re}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(glob string) *Pattern {
	p, err := Compile(glob)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source glob.
func (p *Pattern) String() string { return p.glob }

// Match reports whether path matches the glob exactly.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(path)
}

// Set is an ordered list of compiled patterns sharing one base directory.
// Relative paths are matched as given; absolute paths are matched both as
// given and relative to the base directory. A Set is immutable.
type Set struct {
	base     string
	patterns []*Pattern
}

// NewSet compiles globs relative to base. Globs that fail to compile are
// dropped and logged as warnings; the remaining patterns keep their order.
func NewSet(base string, globs []string, logger *slog.Logger) *Set {
	s := &Set{base: filepath.ToSlash(base)}
	if len(globs) == 0 {
		return s
	}
	s.patterns = make([]*Pattern, 0, len(globs))
	for _, g := range globs {
		p, err := Compile(g)
		if err != nil {
			if logger != nil {
				logger.Warn("dropping pattern", "pattern", g, "base", base, "err", err)
			}
			continue
		}
		s.patterns = append(s.patterns, p)
	}
	return s
}

// Base returns the directory relative paths are resolved against.
func (s *Set) Base() string {
	if s == nil {
		return ""
	}
	return s.base
}

// Len returns the number of compiled patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// Empty reports whether the set holds no compiled patterns.
func (s *Set) Empty() bool { return s.Len() == 0 }

// Globs returns the source globs of the compiled patterns.
func (s *Set) Globs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		out[i] = p.glob
	}
	return out
}

// Match reports whether any pattern matches path.
func (s *Set) Match(path string) bool {
	if s.Empty() {
		return false
	}
	for _, candidate := range s.candidates(path) {
		for _, p := range s.patterns {
			if p.Match(candidate) {
				return true
			}
		}
	}
	return false
}

func (s *Set) candidates(path string) []string {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	out := []string{path}
	if s.base == "" {
		return out
	}
	if strings.HasPrefix(path, "/") {
		if rel, ok := relativeTo(s.base, path); ok {
			out = append(out, rel)
		}
	} else {
		out = append(out, strings.TrimSuffix(s.base, "/")+"/"+path)
	}
	return out
}

// relativeTo returns path relative to base when path lies under base.
func relativeTo(base, path string) (string, bool) {
	base = strings.TrimSuffix(base, "/")
	if base == "" {
		return strings.TrimPrefix(path, "/"), true
	}
	if !strings.HasPrefix(path, base+"/") {
		return "", false
	}
	return path[len(base)+1:], true
}
