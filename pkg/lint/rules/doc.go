// Package rules holds the built-in rule table.
//
// Rules are organized by category:
//   - layout: indentation and line-length rules (Layout/*)
//   - lintcop: rules that catch likely mistakes (Lint/*)
//   - style: stylistic conventions (Style/*)
//
// Builtin returns the descriptors in registration order. The order is
// significant: materialization and listings iterate the registry in order.
package rules
