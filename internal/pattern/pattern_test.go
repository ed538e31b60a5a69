package pattern

import (
	"testing"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRegexp(t *testing.T) {
	tests := []struct {
		glob string
		want string
	}{
		{"*.rb", `^[^/]*\.rb$`},
		{"vendor/**", `^vendor/.*$`},
		{"**/*.rb", `^(?:.*/)?[^/]*\.rb$`},
		{"a?c", `^a[^/]c$`},
		{"[ab].rb", `^[ab]\.rb$`},
		{"[!ab].rb", `^[^ab]\.rb$`},
		{"{app,lib}/*.rb", `^(?:app|lib)/[^/]*\.rb$`},
		{"a+b(c)|$^", `^a\+b\(c\)\|\$\^$`},
		{"a,b}", `^a,b\}$`},
	}

	for _, tt := range tests {
		t.Run(tt.glob, func(t *testing.T) {
			assert.Equal(t, tt.want, ToRegexp(tt.glob))
		})
	}
}

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		glob  string
		path  string
		match bool
	}{
		{"**/*.rb", "a.rb", true},
		{"**/*.rb", "src/deep/a.rb", true},
		{"**/*.rb", "src/a.py", false},
		{"*.rb", "src/a.rb", false},
		{"vendor/**", "vendor/a.x", true},
		{"vendor/**", "src/vendor/a.x", false},
		{"spec/*_spec.rb", "spec/user_spec.rb", true},
		{"spec/*_spec.rb", "spec/models/user_spec.rb", false},
		{"{app,lib}/**/*.rb", "lib/x/y.rb", true},
		{"{app,lib}/**/*.rb", "test/x.rb", false},
		{"file?.rb", "file1.rb", true},
		{"file?.rb", "file10.rb", false},
	}

	for _, tt := range tests {
		t.Run(tt.glob+"~"+tt.path, func(t *testing.T) {
			p := MustCompile(tt.glob)
			assert.Equal(t, tt.match, p.Match(tt.path))
			assert.Equal(t, tt.glob, p.String())
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile("src/{a,b")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrPattern)

	var pe *config.PatternError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "src/{a,b", pe.Pattern)
}

func TestSet_DropsInvalidPatterns(t *testing.T) {
	s := NewSet("/proj", []string{"vendor/**", "src/{a,b", "**/*.rb"}, testutil.NewTestLogger(t))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"vendor/**", "**/*.rb"}, s.Globs())
	assert.Equal(t, "/proj", s.Base())
}

func TestSet_MatchRelativeToBase(t *testing.T) {
	s := NewSet("/proj/sub", []string{"vendor/**"}, nil)

	assert.True(t, s.Match("vendor/x.rb"))
	assert.True(t, s.Match("/proj/sub/vendor/x.rb"))
	assert.True(t, s.Match("./vendor/x.rb"))
	assert.False(t, s.Match("/proj/vendor/x.rb"))
	assert.False(t, s.Match("/other/sub/vendor/x.rb"))
}

func TestSet_AbsolutePattern(t *testing.T) {
	s := NewSet("/proj", []string{"/proj/generated/**"}, nil)

	assert.True(t, s.Match("/proj/generated/a.rb"))
	assert.True(t, s.Match("generated/a.rb"))
	assert.False(t, s.Match("/proj/app/a.rb"))
}

func TestSet_Nil(t *testing.T) {
	var s *Set
	assert.True(t, s.Empty())
	assert.False(t, s.Match("a.rb"))
	assert.Nil(t, s.Globs())
	assert.True(t, NewSet("", nil, nil).Empty())
}
