package lint

import (
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/document"
)

// Handler parses the rule-specific part of a rule's configuration.
type Handler interface {
	// Default returns the parameters used when nothing is configured or
	// when the configured values are rejected.
	Default() any

	// Apply parses parameters from the rule's merged node. node is nil
	// when the rule has no section in the configuration.
	Apply(node *document.Node) (any, error)
}

// RuleDescriptor is the static description of one rule.
// Descriptors are never mutated after the registry is built.
type RuleDescriptor struct {
	Category        string          // e.g. "Layout"
	Name            string          // e.g. "LineLength"
	Description     string          // Human-readable description
	DefaultSeverity core.Severity   // Zero value is SeverityInfo; set explicitly
	DefaultDisabled bool            // Rules are enabled unless this is set
	NodeKinds       []core.NodeKind // Node kinds the rule is dispatched on
	ConfigKeys      []string        // Rule-specific keys accepted by Handler
	Handler         Handler         // nil means the rule takes no parameters
}

// FullName returns "Category/Name".
func (d *RuleDescriptor) FullName() string {
	return d.Category + "/" + d.Name
}

// DefaultParams returns the handler's default parameters, or nil.
func (d *RuleDescriptor) DefaultParams() any {
	if d.Handler == nil {
		return nil
	}
	return d.Handler.Default()
}

// Info returns the rule's metadata for documentation/tooling.
func (d *RuleDescriptor) Info() core.RuleInfo {
	kinds := make([]string, len(d.NodeKinds))
	for i, k := range d.NodeKinds {
		kinds[i] = k.String()
	}
	return core.RuleInfo{
		Name:            d.FullName(),
		Category:        d.Category,
		ShortName:       d.Name,
		Description:     d.Description,
		DefaultSeverity: d.DefaultSeverity,
		DefaultEnabled:  !d.DefaultDisabled,
		ConfigKeys:      d.ConfigKeys,
		NodeKinds:       kinds,
	}
}
