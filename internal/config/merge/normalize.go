package merge

import (
	"github.com/qraqras/leukocyte-sub000/internal/config"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// RuleLookup answers whether a category or rule is known.
// *lint.Registry implements it.
type RuleLookup interface {
	Has(category, name string) bool
	HasCategory(category string) bool
}

// Normalize rewrites one raw document into canonical form before merging:
//   - rules nested as Category: {Rule: {...}} are hoisted to "Category/Rule"
//     for known rules; when both forms are present the combined key wins
//   - the "general" section is folded into AllCops, AllCops winning
//
// Unknown rule names under a category stay where they are. doc is not
// modified.
func Normalize(arena *document.Arena, doc *document.Node, rules RuleLookup) (*document.Node, error) {
	if !doc.IsMapping() {
		return nil, &config.MergeError{Err: ErrNotMapping}
	}

	out := arena.Mapping()
	out.Line = doc.Line
	var hoisted []document.Pair
	var general *document.Node

	for _, p := range doc.Pairs {
		switch {
		case p.Key == config.KeyGeneral:
			general = p.Value
		case rules != nil && rules.HasCategory(p.Key) && p.Value.IsMapping():
			cat := arena.Mapping()
			cat.Line = p.Value.Line
			for _, rp := range p.Value.Pairs {
				if rules.Has(p.Key, rp.Key) && rp.Value.IsMapping() {
					hoisted = append(hoisted, document.Pair{Key: p.Key + "/" + rp.Key, Value: rp.Value})
					continue
				}
				cat.Set(rp.Key, rp.Value.Clone(arena))
			}
			out.Set(p.Key, cat)
		default:
			out.Set(p.Key, p.Value.Clone(arena))
		}
	}

	for _, h := range hoisted {
		v := h.Value.Clone(arena)
		if combined := doc.Get(h.Key); combined != nil {
			var err error
			if v, err = Pair(arena, h.Value, combined); err != nil {
				return nil, err
			}
		}
		out.Set(h.Key, v)
	}

	if general != nil {
		v := general.Clone(arena)
		if allCops := doc.Get(config.KeyAllCops); allCops != nil {
			var err error
			if v, err = Pair(arena, general, allCops); err != nil {
				return nil, err
			}
		}
		out.Set(config.KeyAllCops, v)
	}

	return out, nil
}
