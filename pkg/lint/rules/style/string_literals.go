package style

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// Quote styles.
const (
	SingleQuotes = "single_quotes"
	DoubleQuotes = "double_quotes"
)

// StringLiteralsParams configures Style/StringLiterals.
type StringLiteralsParams struct {
	EnforcedStyle               string `config:"EnforcedStyle"`
	ConsistentQuotesInMultiline bool   `config:"ConsistentQuotesInMultiline"`
}

// StringLiterals checks which quote character string literals use.
var StringLiterals = lint.RuleDescriptor{
	Category:        "Style",
	Name:            "StringLiterals",
	Description:     "Checks that string literals use the configured quotes.",
	DefaultSeverity: lint.SeverityConvention,
	NodeKinds:       []core.NodeKind{core.NodeString},
	ConfigKeys:      []string{"EnforcedStyle", "ConsistentQuotesInMultiline"},
	Handler: lint.ParamsHandler[StringLiteralsParams]{
		Defaults: func() StringLiteralsParams {
			return StringLiteralsParams{EnforcedStyle: SingleQuotes}
		},
		Validate: func(p *StringLiteralsParams) error {
			if p.EnforcedStyle != SingleQuotes && p.EnforcedStyle != DoubleQuotes {
				return lint.InvalidParam("EnforcedStyle", "want %q or %q, got %q", SingleQuotes, DoubleQuotes, p.EnforcedStyle)
			}
			return nil
		},
	},
}
