// Package core defines the shared language of the leuko system.
//
// This package contains:
//   - Severity levels reported by rules
//   - Syntax node kinds used to index rule dispatch
//   - Rule metadata DTOs (RuleInfo)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
