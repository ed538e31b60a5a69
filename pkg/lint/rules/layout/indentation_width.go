package layout

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// IndentationWidthParams configures Layout/IndentationWidth.
type IndentationWidthParams struct {
	Width           int      `config:"Width"`
	AllowedPatterns []string `config:"AllowedPatterns"`
}

const defaultIndentationWidth = 2

// IndentationWidth checks the number of spaces used for indentation.
var IndentationWidth = lint.RuleDescriptor{
	Category:        "Layout",
	Name:            "IndentationWidth",
	Description:     "Checks that indentation uses the configured number of spaces.",
	DefaultSeverity: lint.SeverityConvention,
	NodeKinds:       []core.NodeKind{core.NodeDef, core.NodeClass, core.NodeModule, core.NodeIf, core.NodeBlock},
	ConfigKeys:      []string{"Width", "AllowedPatterns"},
	Handler: lint.ParamsHandler[IndentationWidthParams]{
		Defaults: func() IndentationWidthParams {
			return IndentationWidthParams{Width: defaultIndentationWidth}
		},
		Validate: func(p *IndentationWidthParams) error {
			if p.Width <= 0 {
				return lint.InvalidParam("Width", "must be a positive integer, got %d", p.Width)
			}
			return nil
		},
	},
}
