package rules

import (
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules/layout"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules/lintcop"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules/style"
)

// Builtin returns the built-in rule descriptors in registration order.
func Builtin() []lint.RuleDescriptor {
	return []lint.RuleDescriptor{
		layout.IndentationConsistency,
		layout.IndentationStyle,
		layout.IndentationWidth,
		layout.LineLength,
		lintcop.Debugger,
		style.StringLiterals,
	}
}

// NewRegistry returns a registry holding the built-in rules.
func NewRegistry() *lint.Registry {
	return lint.MustRegistry(Builtin()...)
}
