package lint

import "github.com/qraqras/leukocyte-sub000/pkg/core"

// =============================================================================
// Core Type Aliases
// =============================================================================

// Severity is an alias for core.Severity.
type Severity = core.Severity

// NodeKind is an alias for core.NodeKind.
type NodeKind = core.NodeKind

// Severity constants re-exported for rule packages.
const (
	SeverityInfo       = core.SeverityInfo
	SeverityRefactor   = core.SeverityRefactor
	SeverityConvention = core.SeverityConvention
	SeverityWarning    = core.SeverityWarning
	SeverityError      = core.SeverityError
	SeverityFatal      = core.SeverityFatal
)
