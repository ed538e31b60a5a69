package core

// =============================================================================
// RuleInfo
// =============================================================================

// RuleInfo provides metadata about a rule for documentation/tooling.
// This is a DTO (Data Transfer Object) - it carries data without behavior.
// Name is the full "Category/ShortName" form.
type RuleInfo struct {
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	ShortName       string   `json:"short_name"`
	Description     string   `json:"description"`
	DefaultSeverity Severity `json:"default_severity"`
	DefaultEnabled  bool     `json:"default_enabled"`
	ConfigKeys      []string `json:"config_keys,omitempty"`
	NodeKinds       []string `json:"node_kinds,omitempty"`
}
