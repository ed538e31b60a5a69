package lintcop

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
)

// DebuggerParams configures Lint/Debugger.
type DebuggerParams struct {
	DebuggerMethods []string `config:"DebuggerMethods"`
}

var defaultDebuggerMethods = []string{
	"binding.irb",
	"binding.pry",
	"byebug",
	"debugger",
	"remote_byebug",
}

// Debugger flags debugger calls left in the source.
var Debugger = lint.RuleDescriptor{
	Category:        "Lint",
	Name:            "Debugger",
	Description:     "Checks for debugger calls left in the source.",
	DefaultSeverity: lint.SeverityWarning,
	NodeKinds:       []core.NodeKind{core.NodeCall},
	ConfigKeys:      []string{"DebuggerMethods"},
	Handler: lint.ParamsHandler[DebuggerParams]{
		Defaults: func() DebuggerParams {
			return DebuggerParams{DebuggerMethods: append([]string(nil), defaultDebuggerMethods...)}
		},
	},
}
