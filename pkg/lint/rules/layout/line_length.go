package layout

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// LineLengthParams configures Layout/LineLength.
type LineLengthParams struct {
	Max      int  `config:"Max"`
	AllowURI bool `config:"AllowURI"`
}

// LineLength checks the length of lines in the source.
var LineLength = lint.RuleDescriptor{
	Category:        "Layout",
	Name:            "LineLength",
	Description:     "Checks that lines do not exceed the maximum length.",
	DefaultSeverity: lint.SeverityConvention,
	NodeKinds:       []core.NodeKind{core.NodeProgram},
	ConfigKeys:      []string{"Max", "AllowURI"},
	Handler: lint.ParamsHandler[LineLengthParams]{
		Defaults: func() LineLengthParams {
			return LineLengthParams{Max: 80, AllowURI: true}
		},
		Validate: func(p *LineLengthParams) error {
			if p.Max <= 0 {
				return lint.InvalidParam("Max", "must be a positive integer, got %d", p.Max)
			}
			return nil
		},
	},
}
