package commands

import (
	"fmt"
	"strings"

	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Category string // Filter by category
	Long     bool   // Show descriptions and configuration keys
}

// RulesOutput is the structured output of rules.
type RulesOutput struct {
	Rules []core.RuleInfo `json:"rules" yaml:"rules"`
	Count int             `json:"count" yaml:"count"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-name]",
		Short: "List available rules",
		Long: `List the built-in rules with their default severity and enabled state.

Rules are grouped by category (Layout, Lint, Style). Pass a full rule
name such as Layout/LineLength to see one rule in detail.`,
		Example: `  # List all rules
  leuko rules

  # Show details for one rule
  leuko rules Layout/LineLength

  # List Layout rules with descriptions
  leuko rules --category Layout -l`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := NewCommandContextWithoutEngine(cmd).Renderer
			registry := rules.NewRegistry()
			if len(args) == 1 {
				return showRule(r, registry, args[0])
			}
			return listRules(r, registry, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "g", "", "Filter by category")
	cmd.Flags().BoolVarP(&opts.Long, "long", "l", false, "Show descriptions and configuration keys")

	return cmd
}

func listRules(r *output.Renderer, registry *lint.Registry, opts *RulesOptions) error {
	var infos []core.RuleInfo
	for _, info := range registry.Infos() {
		if opts.Category != "" && !strings.EqualFold(info.Category, opts.Category) {
			continue
		}
		infos = append(infos, info)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		if infos == nil {
			infos = []core.RuleInfo{}
		}
		return r.Structure(RulesOutput{Rules: infos, Count: len(infos)})
	case output.ModeMarkdown:
		listRulesMarkdown(r, infos, opts.Long)
	default:
		listRulesText(r, infos, opts.Long)
	}
	return nil
}

func listRulesText(r *output.Renderer, infos []core.RuleInfo, long bool) {
	styles := r.Styles()
	title := cases.Title(language.English)

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("Rules (%d)", len(infos))))

	category := ""
	for _, info := range infos {
		if info.Category != category {
			category = info.Category
			r.Println("")
			r.Println(styles.Header2.Render(category))
		}
		state := ""
		if !info.DefaultEnabled {
			state = styles.Muted.Render(" (disabled)")
		}
		r.Printf("  %-32s %s%s\n",
			info.Name,
			styles.Severity(info.DefaultSeverity).Render(title.String(info.DefaultSeverity.String())),
			state,
		)
		if long {
			r.Println(styles.Muted.Render("      " + info.Description))
			if len(info.ConfigKeys) > 0 {
				r.Println(styles.Muted.Render("      Options: " + strings.Join(info.ConfigKeys, ", ")))
			}
		}
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'leuko rules <rule-name>' for details"))
}

func listRulesMarkdown(r *output.Renderer, infos []core.RuleInfo, long bool) {
	r.Println("# Rules")

	category := ""
	for _, info := range infos {
		if info.Category != category {
			category = info.Category
			r.Println("")
			r.Println("## " + category)
			r.Println("")
		}
		r.Printf("- **%s** (`%s`)", info.Name, info.DefaultSeverity)
		if !info.DefaultEnabled {
			r.Printf(" disabled")
		}
		r.Println("")
		if long {
			r.Println("  " + info.Description)
		}
	}
}

func showRule(r *output.Renderer, registry *lint.Registry, name string) error {
	d, ok := registry.Lookup(name)
	if !ok {
		return fmt.Errorf("rule %q not found", name)
	}
	info := d.Info()

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Structure(info)
	case output.ModeMarkdown:
		r.Printf("# %s\n\n", info.Name)
		r.Printf("**Severity:** `%s` | **Enabled:** %t\n\n", info.DefaultSeverity, info.DefaultEnabled)
		r.Println(info.Description)
		if len(info.ConfigKeys) > 0 {
			r.Println("")
			r.Printf("Options: `%s`\n", strings.Join(info.ConfigKeys, "`, `"))
		}
		if len(info.NodeKinds) > 0 {
			r.Println("")
			r.Printf("Node kinds: %s\n", strings.Join(info.NodeKinds, ", "))
		}
		return nil
	}

	styles := r.Styles()
	r.Println("")
	r.Println(styles.Header1.Render(info.Name))
	r.Println("")
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), info.DefaultSeverity)
	r.Printf("  %s: %t\n", styles.Bold.Render("Enabled"), info.DefaultEnabled)
	if len(info.NodeKinds) > 0 {
		r.Printf("  %s: %s\n", styles.Bold.Render("Node kinds"), strings.Join(info.NodeKinds, ", "))
	}
	r.Println("")
	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + info.Description)
	if len(info.ConfigKeys) > 0 {
		r.Println("")
		r.Println(styles.Bold.Render("Configuration"))
		r.Printf("  Options: %s\n", strings.Join(info.ConfigKeys, ", "))
	}
	return nil
}
