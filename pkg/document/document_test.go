package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`
AllCops:
  Exclude:
    - vendor/**
Layout/LineLength:
  Max: 120
  Enabled: true
inherit_from: base.yml
`), nil)
	require.NoError(t, err)
	require.True(t, doc.IsMapping())

	assert.Equal(t, []string{"AllCops", "Layout/LineLength", "inherit_from"}, doc.Keys())
	assert.Equal(t, []string{"vendor/**"}, doc.Get("AllCops").Get("Exclude").Strings())

	max, ok := doc.Get("Layout/LineLength").Get("Max").Int()
	require.True(t, ok)
	assert.Equal(t, 120, max)

	enabled, ok := doc.Get("Layout/LineLength").Get("Enabled").Bool()
	require.True(t, ok)
	assert.True(t, enabled)

	assert.Equal(t, []string{"base.yml"}, doc.Get("inherit_from").Strings())
	assert.Nil(t, doc.Get("missing"))
	assert.Equal(t, 4, doc.Get("AllCops").Get("Exclude").Items[0].Line)
}

func TestParse_EmptyAndInvalid(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr bool
	}{
		{"empty", "", false},
		{"comment only", "# nothing\n", false},
		{"explicit null", "~\n", false},
		{"sequence root", "- a\n- b\n", true},
		{"scalar root", "hello\n", true},
		{"malformed", "a: [b\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, doc.IsMapping())
			assert.Equal(t, 0, doc.Len())
		})
	}
}

func TestParse_AliasesAndMergeKeys(t *testing.T) {
	doc := MustParse(`
shared: &shared
  Exclude: [a/**]
  Enabled: false
Layout/LineLength:
  <<: *shared
  Enabled: true
Lint/Debugger: *shared
`)

	ll := doc.Get("Layout/LineLength")
	enabled, _ := ll.Get("Enabled").Bool()
	assert.True(t, enabled, "explicit key wins over merge key")
	assert.Equal(t, []string{"a/**"}, ll.Get("Exclude").Strings())

	dbg := doc.Get("Lint/Debugger")
	assert.Equal(t, []string{"a/**"}, dbg.Get("Exclude").Strings())
}

// nestedAliases builds a document where each level holds ten aliases of
// the previous one: a few hundred bytes expanding to 10^levels scalars.
func nestedAliases(levels int) string {
	var b strings.Builder
	b.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i < levels; i++ {
		ref := fmt.Sprintf("*l%d", i-1)
		fmt.Fprintf(&b, "l%d: &l%d [%s]\n", i, i, strings.TrimSuffix(strings.Repeat(ref+", ", 10), ", "))
	}
	return b.String()
}

func TestParse_AliasExpansionIsBounded(t *testing.T) {
	doc, err := Parse([]byte(nestedAliases(3)), nil)
	require.NoError(t, err)
	assert.Len(t, doc.Get("l2").Items, 10)

	src := nestedAliases(7)
	require.Less(t, len(src), 512)

	arena := NewArena()
	_, err = Parse([]byte(src), arena)
	require.ErrorIs(t, err, ErrTooLarge)
	assert.LessOrEqual(t, arena.Len(), maxNodes)
}

func TestNode_SetOrigin(t *testing.T) {
	doc := MustParse("AllCops:\n  Exclude: [a/**, b/**]\n")
	doc.SetOrigin("/proj")

	item := doc.Get("AllCops").Get("Exclude").Items[1]
	assert.Equal(t, "/proj", item.Origin)
	assert.Equal(t, "/proj", item.Clone(NewArena()).Origin)
	assert.True(t, doc.Equal(MustParse("AllCops:\n  Exclude: [a/**, b/**]\n")), "origin is not structural")
}

func TestNode_Bool(t *testing.T) {
	for _, v := range []string{"true", "True", "yes", "1", "on"} {
		b, ok := (&Node{Kind: KindScalar, Value: v}).Bool()
		assert.True(t, ok, v)
		assert.True(t, b, v)
	}
	for _, v := range []string{"false", "NO", "0", "off"} {
		b, ok := (&Node{Kind: KindScalar, Value: v}).Bool()
		assert.True(t, ok, v)
		assert.False(t, b, v)
	}
	_, ok := (&Node{Kind: KindScalar, Value: "maybe"}).Bool()
	assert.False(t, ok)
	_, ok = (*Node)(nil).Bool()
	assert.False(t, ok)
}

func TestNode_Interface(t *testing.T) {
	doc := MustParse(`
Width: 4
Ratio: 0.5
Flag: true
Name: tabs
Nothing: ~
List: [1, two]
`)
	got := doc.Interface()
	assert.Equal(t, map[string]any{
		"Width":   4,
		"Ratio":   0.5,
		"Flag":    true,
		"Name":    "tabs",
		"Nothing": nil,
		"List":    []any{1, "two"},
	}, got)
}

func TestNode_CloneIsIndependent(t *testing.T) {
	arena := NewArena()
	orig := MustParse("a:\n  b: [x]\n")
	clone := orig.Clone(arena)

	require.True(t, orig.Equal(clone))
	clone.Get("a").Get("b").Append(arena.Str("y"))

	assert.Equal(t, []string{"x"}, orig.Get("a").Get("b").Strings())
	assert.Equal(t, []string{"x", "y"}, clone.Get("a").Get("b").Strings())
	assert.False(t, orig.Equal(clone))
	assert.Positive(t, arena.Len())
}

func TestArena(t *testing.T) {
	arena := NewArena()
	for i := 0; i < slabSize*2+3; i++ {
		arena.Str("x")
	}
	assert.Equal(t, slabSize*2+3, arena.Len())
	assert.Len(t, arena.slabs, 3)

	arena.Release()
	assert.Equal(t, 0, arena.Len())
	assert.Empty(t, arena.slabs)

	var nilArena *Arena
	n := nilArena.Mapping()
	assert.True(t, n.IsMapping())
	assert.Equal(t, 0, nilArena.Len())
}

func TestNode_Set(t *testing.T) {
	arena := NewArena()
	m := arena.Mapping()
	m.Set("a", arena.Str("1"))
	m.Set("b", arena.Str("2"))
	m.Set("a", arena.Str("3"))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, "3", m.Get("a").String())
	assert.True(t, m.Has("b"))
	assert.Equal(t, "2", m.GetFold("B").String())
}

func TestNode_MarshalPreservesOrder(t *testing.T) {
	doc := MustParse("z: 1\na: [x, y]\nm: {k: true}\n")

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":["x","y"],"m":{"k":true}}`, string(data))

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	back := MustParse(string(out))
	assert.True(t, doc.Equal(back))
	assert.Equal(t, []string{"z", "a", "m"}, back.Keys())
}
