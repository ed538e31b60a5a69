package layout

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// Enforced styles for Layout/IndentationConsistency.
const (
	ConsistencyNormal                  = "normal"
	ConsistencyIndentedInternalMethods = "indented_internal_methods"
)

// IndentationConsistencyParams configures Layout/IndentationConsistency.
type IndentationConsistencyParams struct {
	EnforcedStyle string `config:"EnforcedStyle"`
}

// IndentationConsistency checks that statements in a body share one indentation.
var IndentationConsistency = lint.RuleDescriptor{
	Category:        "Layout",
	Name:            "IndentationConsistency",
	Description:     "Checks for inconsistent indentation within a body.",
	DefaultSeverity: lint.SeverityConvention,
	NodeKinds:       []core.NodeKind{core.NodeStatements, core.NodeClass, core.NodeModule},
	ConfigKeys:      []string{"EnforcedStyle"},
	Handler: lint.ParamsHandler[IndentationConsistencyParams]{
		Defaults: func() IndentationConsistencyParams {
			return IndentationConsistencyParams{EnforcedStyle: ConsistencyNormal}
		},
		Validate: func(p *IndentationConsistencyParams) error {
			switch p.EnforcedStyle {
			case ConsistencyNormal, ConsistencyIndentedInternalMethods:
				return nil
			}
			return lint.InvalidParam("EnforcedStyle", "want %q or %q, got %q",
				ConsistencyNormal, ConsistencyIndentedInternalMethods, p.EnforcedStyle)
		},
	},
}
