// Package lintcop contains the Lint/* rules. The package is not named
// "lint" to avoid shadowing pkg/lint in rule files.
package lintcop
