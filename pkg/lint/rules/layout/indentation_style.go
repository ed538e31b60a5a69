package layout

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// Indentation styles.
const (
	IndentSpaces = "spaces"
	IndentTabs   = "tabs"
)

// IndentationStyleParams configures Layout/IndentationStyle.
type IndentationStyleParams struct {
	Style            string `config:"IndentationStyle"`
	IndentationWidth int    `config:"IndentationWidth"`
}

// IndentationStyle checks whether indentation uses spaces or tabs.
var IndentationStyle = lint.RuleDescriptor{
	Category:        "Layout",
	Name:            "IndentationStyle",
	Description:     "Checks that indentation uses the configured character.",
	DefaultSeverity: lint.SeverityConvention,
	NodeKinds:       []core.NodeKind{core.NodeProgram},
	ConfigKeys:      []string{"IndentationStyle", "IndentationWidth"},
	Handler: lint.ParamsHandler[IndentationStyleParams]{
		Defaults: func() IndentationStyleParams {
			return IndentationStyleParams{Style: IndentSpaces}
		},
		Validate: func(p *IndentationStyleParams) error {
			switch p.Style {
			case IndentSpaces, IndentTabs:
			default:
				return lint.InvalidParam("IndentationStyle", "want %q or %q, got %q", IndentSpaces, IndentTabs, p.Style)
			}
			if p.IndentationWidth < 0 {
				return lint.InvalidParam("IndentationWidth", "must not be negative, got %d", p.IndentationWidth)
			}
			return nil
		},
	},
}
