package core

import "strings"

// =============================================================================
// Severity
// =============================================================================

// Severity indicates the importance of a rule offense.
// Values are ordered from least to most severe.
type Severity int

// Severity levels, lowest first.
const (
	// SeverityInfo is informational feedback that never fails a run.
	SeverityInfo Severity = iota
	// SeverityRefactor suggests a structural improvement.
	SeverityRefactor
	// SeverityConvention flags a style convention. This is the default.
	SeverityConvention
	// SeverityWarning flags a potential problem.
	SeverityWarning
	// SeverityError flags a definite problem.
	SeverityError
	// SeverityFatal is reserved for offenses that stop analysis of a file.
	SeverityFatal
)

// DefaultSeverity is used when a rule declares none or an unknown token is configured.
const DefaultSeverity = SeverityConvention

var severityNames = [...]string{
	SeverityInfo:       "info",
	SeverityRefactor:   "refactor",
	SeverityConvention: "convention",
	SeverityWarning:    "warning",
	SeverityError:      "error",
	SeverityFatal:      "fatal",
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// Code returns the single-letter code used in compact output (I, R, C, W, E, F).
func (s Severity) Code() string {
	name := s.String()
	if name == "unknown" {
		return "?"
	}
	return strings.ToUpper(name[:1])
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Unknown tokens decode to DefaultSeverity.
func (s *Severity) UnmarshalText(text []byte) error {
	*s, _ = ParseSeverity(string(text))
	return nil
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or DefaultSeverity and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, true
	case "refactor":
		return SeverityRefactor, true
	case "convention":
		return SeverityConvention, true
	case "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	case "fatal":
		return SeverityFatal, true
	default:
		return DefaultSeverity, false
	}
}

// AllSeverities returns every severity, lowest first.
func AllSeverities() []Severity {
	return []Severity{
		SeverityInfo,
		SeverityRefactor,
		SeverityConvention,
		SeverityWarning,
		SeverityError,
		SeverityFatal,
	}
}
