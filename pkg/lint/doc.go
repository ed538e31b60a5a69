// Package lint defines rule descriptors and the rule registry.
//
// # Architecture
//
// A rule is described by a RuleDescriptor: its category, its name, the
// syntax node kinds it subscribes to and a Handler that parses the rule's
// specific parameters from the merged configuration document.
//
// The registry is an explicit table built once at startup:
//
//	reg, err := lint.NewRegistry(
//		layout.LineLength,
//		lintcop.Debugger,
//	)
//
// There is no init()-time registration. The built-in table lives in
// pkg/lint/rules:
//
//	reg := rules.NewRegistry()
//
// # Rule Parameters
//
// Most rules decode their parameters into a typed struct with ParamsHandler:
//
//	type Params struct {
//		Max int `config:"Max"`
//	}
//
//	var Handler = lint.ParamsHandler[Params]{
//		Defaults: func() Params { return Params{Max: 80} },
//		Validate: func(p *Params) error { ... },
//	}
//
// Decoding goes through mapstructure with weak typing, so "120" and 120
// are both accepted for an int field.
package lint
