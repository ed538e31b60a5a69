package merge

import (
	"testing"

	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMerge(t *testing.T, docs ...string) *document.Node {
	t.Helper()
	nodes := make([]*document.Node, len(docs))
	for i, d := range docs {
		nodes[i] = document.MustParse(d)
	}
	out, err := Merge(document.NewArena(), nodes...)
	require.NoError(t, err)
	return out
}

func TestMerge_ScalarOverride(t *testing.T) {
	out := mustMerge(t,
		"Layout/LineLength:\n  Max: 80\n  Enabled: true\n",
		"Layout/LineLength:\n  Max: 120\n",
	)

	rule := out.Get("Layout/LineLength")
	max, _ := rule.Get("Max").Int()
	assert.Equal(t, 120, max)
	enabled, _ := rule.Get("Enabled").Bool()
	assert.True(t, enabled, "parent-only key survives")
}

func TestMerge_SequenceConcatenation(t *testing.T) {
	out := mustMerge(t,
		"AllCops:\n  Exclude: [a]\n",
		"AllCops:\n  Exclude: [b]\n",
		"AllCops:\n  Exclude: [a]\n",
	)
	assert.Equal(t, []string{"a", "b", "a"}, out.Get("AllCops").Get("Exclude").Strings(), "duplicates are kept")
}

func TestMerge_TypeConflictChildWins(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		child  string
		check  func(t *testing.T, v *document.Node)
	}{
		{
			name:   "scalar replaced by mapping",
			parent: "K: x\n",
			child:  "K:\n  foo: bar\n",
			check: func(t *testing.T, v *document.Node) {
				require.True(t, v.IsMapping())
				assert.Equal(t, "bar", v.Get("foo").String())
			},
		},
		{
			name:   "mapping replaced by scalar",
			parent: "K:\n  foo: bar\n",
			child:  "K: x\n",
			check: func(t *testing.T, v *document.Node) {
				assert.Equal(t, "x", v.String())
			},
		},
		{
			name:   "sequence replaced by scalar",
			parent: "K: [a, b]\n",
			child:  "K: c\n",
			check: func(t *testing.T, v *document.Node) {
				assert.Equal(t, "c", v.String())
			},
		},
		{
			name:   "scalar replaced by sequence",
			parent: "K: c\n",
			child:  "K: [a]\n",
			check: func(t *testing.T, v *document.Node) {
				assert.Equal(t, []string{"a"}, v.Strings())
			},
		},
		{
			name:   "explicit null replaces",
			parent: "K: [a]\n",
			child:  "K: ~\n",
			check: func(t *testing.T, v *document.Node) {
				assert.True(t, v.IsNull())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mustMerge(t, tt.parent, tt.child).Get("K"))
		})
	}
}

func TestMerge_KeyOrder(t *testing.T) {
	out := mustMerge(t, "b: 1\na: 2\n", "c: 3\na: 4\n")
	assert.Equal(t, []string{"b", "a", "c"}, out.Keys())
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	parent := document.MustParse("AllCops:\n  Exclude: [a]\nX: {y: 1}\n")
	child := document.MustParse("AllCops:\n  Exclude: [b]\nX: {z: 2}\n")
	parentCopy := parent.Clone(nil)
	childCopy := child.Clone(nil)

	out, err := Merge(document.NewArena(), parent, child)
	require.NoError(t, err)

	assert.True(t, parent.Equal(parentCopy))
	assert.True(t, child.Equal(childCopy))

	// the result shares no nodes with the inputs
	out.Get("AllCops").Get("Exclude").Items[0].Value = "changed"
	assert.Equal(t, []string{"a"}, parent.Get("AllCops").Get("Exclude").Strings())
}

func TestMerge_InheritModeOverride(t *testing.T) {
	t.Run("cop level", func(t *testing.T) {
		out := mustMerge(t,
			"Layout/LineLength:\n  Exclude: [a]\n",
			"Layout/LineLength:\n  inherit_mode:\n    override: [Exclude]\n  Exclude: [b]\n",
		)
		assert.Equal(t, []string{"b"}, out.Get("Layout/LineLength").Get("Exclude").Strings())
	})

	t.Run("root level", func(t *testing.T) {
		out := mustMerge(t,
			"AllCops:\n  Include: [a]\n  Exclude: [x]\n",
			"inherit_mode:\n  override: [Include]\nAllCops:\n  Include: [b]\n  Exclude: [y]\n",
		)
		assert.Equal(t, []string{"b"}, out.Get("AllCops").Get("Include").Strings())
		assert.Equal(t, []string{"x", "y"}, out.Get("AllCops").Get("Exclude").Strings())
	})

	t.Run("cop level merge beats root override", func(t *testing.T) {
		out := mustMerge(t,
			"Lint/Debugger:\n  Exclude: [a]\n",
			"inherit_mode:\n  override: [Exclude]\nLint/Debugger:\n  inherit_mode:\n    merge: [Exclude]\n  Exclude: [b]\n",
		)
		assert.Equal(t, []string{"a", "b"}, out.Get("Lint/Debugger").Get("Exclude").Strings())
	})
}

func TestMerge_Errors(t *testing.T) {
	arena := document.NewArena()
	seq := arena.Strings("a")
	_, err := Merge(arena, seq)
	assert.ErrorIs(t, err, config.ErrMerge)
	assert.ErrorIs(t, err, document.ErrNotMapping, "same sentinel as the parser")

	_, err = Normalize(arena, seq, nil)
	assert.ErrorIs(t, err, document.ErrNotMapping)

	deep := arena.Mapping()
	cur := deep
	for i := 0; i < maxDepth+2; i++ {
		next := arena.Mapping()
		cur.Set("k", next)
		cur = next
	}
	_, err = Merge(arena, deep, deep)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooDeep)
	assert.True(t, config.IsFatal(err))
}

func TestNormalize(t *testing.T) {
	reg := rules.NewRegistry()
	arena := document.NewArena()

	doc := document.MustParse(`
Layout:
  Exclude: [gen/**]
  LineLength:
    Max: 100
    Exclude: [nested/**]
  NotARule:
    Max: 1
Layout/LineLength:
  Max: 120
general:
  Exclude: [g/**]
  Include: [app/**]
AllCops:
  Exclude: [a/**]
`)
	out, err := Normalize(arena, doc, reg)
	require.NoError(t, err)

	layout := out.Get("Layout")
	assert.Equal(t, []string{"gen/**"}, layout.Get("Exclude").Strings())
	assert.Nil(t, layout.Get("LineLength"), "known rule hoisted")
	assert.NotNil(t, layout.Get("NotARule"), "unknown rule left in place")

	ll := out.Get("Layout/LineLength")
	max, _ := ll.Get("Max").Int()
	assert.Equal(t, 120, max, "combined key wins")
	assert.Equal(t, []string{"nested/**"}, ll.Get("Exclude").Strings())

	allCops := out.Get("AllCops")
	assert.Equal(t, []string{"g/**", "a/**"}, allCops.Get("Exclude").Strings())
	assert.Equal(t, []string{"app/**"}, allCops.Get("Include").Strings())
	assert.False(t, out.Has("general"))

	// input untouched
	assert.NotNil(t, doc.Get("Layout").Get("LineLength"))
}

func TestNormalize_NestedOnly(t *testing.T) {
	out, err := Normalize(document.NewArena(), document.MustParse("Lint:\n  Debugger:\n    Enabled: false\n"), rules.NewRegistry())
	require.NoError(t, err)

	enabled, ok := out.Get("Lint/Debugger").Get("Enabled").Bool()
	require.True(t, ok)
	assert.False(t, enabled)
}
