package materialize

import "github.com/qraqras/leukocyte-sub000/pkg/core"

// View is a serializable snapshot of an EffectiveConfig.
type View struct {
	BaseDir    string         `json:"base_dir" yaml:"base_dir"`
	Global     FilterView     `json:"global" yaml:"global"`
	Categories []CategoryView `json:"categories" yaml:"categories"`
	Rules      []RuleView     `json:"rules" yaml:"rules"`
}

// FilterView lists include and exclude patterns.
type FilterView struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// CategoryView is one category's scope.
type CategoryView struct {
	Name    string   `json:"name" yaml:"name"`
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// RuleView is one rule's resolved settings.
type RuleView struct {
	Name     string        `json:"name" yaml:"name"`
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Severity core.Severity `json:"severity" yaml:"severity"`
	Include  []string      `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude  []string      `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Params   any           `json:"params,omitempty" yaml:"params,omitempty"`
}

// View returns a snapshot of c suitable for rendering.
func (c *EffectiveConfig) View() View {
	v := View{
		BaseDir: c.baseDir,
		Global:  FilterView{Include: c.global.Include, Exclude: c.global.Exclude},
		Rules:   make([]RuleView, 0, len(c.rules)),
	}
	for _, name := range c.Categories() {
		cat := c.categories[name]
		v.Categories = append(v.Categories, CategoryView{Name: name, Include: cat.Include, Exclude: cat.Exclude})
	}
	for _, r := range c.rules {
		v.Rules = append(v.Rules, RuleView{
			Name:     r.Name(),
			Enabled:  r.Enabled,
			Severity: r.Severity,
			Include:  r.Include,
			Exclude:  r.Exclude,
			Params:   r.Params,
		})
	}
	return v
}
