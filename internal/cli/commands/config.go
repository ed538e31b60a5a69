package commands

import (
	"fmt"
	"strings"

	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/qraqras/leukocyte-sub000/internal/config/materialize"
	"github.com/spf13/cobra"
)

// ConfigShowOptions holds options for config show.
type ConfigShowOptions struct {
	Category string // Only show rules in this category
	Enabled  bool   // Only show enabled rules
}

// ConfigShowOutput is the structured output of config show.
type ConfigShowOutput struct {
	Path        string           `json:"path" yaml:"path"`
	Sources     []string         `json:"sources" yaml:"sources"`
	Config      materialize.View `json:"config" yaml:"config"`
	UnknownKeys []string         `json:"unknown_keys,omitempty" yaml:"unknown_keys,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect resolved RuboCop configuration",
	}
	cmd.AddCommand(newConfigShowCommand())
	return cmd
}

func newConfigShowCommand() *cobra.Command {
	opts := &ConfigShowOptions{}
	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Show the effective configuration for a file or directory",
		Long: `Resolve the configuration chain for a path and print every rule's
effective settings: enabled state, severity, include/exclude patterns and
parameters. Rule keys that no rule accepts are reported as warnings.`,
		Example: `  leuko config show app/models/user.rb
  leuko config show lib --category Layout -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigShow(cmd, path, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Category, "category", "", "Only show rules in this category")
	cmd.Flags().BoolVar(&opts.Enabled, "enabled", false, "Only show enabled rules")
	return cmd
}

func runConfigShow(cmd *cobra.Command, path string, opts *ConfigShowOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := cmdCtx.Engine.Resolve(path)
	if err != nil {
		return err
	}
	defer n.Release()

	out := ConfigShowOutput{
		Path:        path,
		Sources:     []string{},
		Config:      filterView(n.Effective().View(), opts),
		UnknownKeys: cmdCtx.Engine.UnknownKeys(n),
	}
	for _, src := range n.Sources() {
		out.Sources = append(out.Sources, src.Path)
	}
	return renderConfigShow(cmdCtx.Renderer, out)
}

func filterView(v materialize.View, opts *ConfigShowOptions) materialize.View {
	if opts.Category == "" && !opts.Enabled {
		return v
	}
	rules := v.Rules[:0:0]
	for _, rule := range v.Rules {
		if opts.Category != "" && !strings.HasPrefix(rule.Name, opts.Category+"/") {
			continue
		}
		if opts.Enabled && !rule.Enabled {
			continue
		}
		rules = append(rules, rule)
	}
	v.Rules = rules
	if opts.Category != "" {
		cats := v.Categories[:0:0]
		for _, c := range v.Categories {
			if c.Name == opts.Category {
				cats = append(cats, c)
			}
		}
		v.Categories = cats
	}
	return v
}

func renderConfigShow(r *output.Renderer, out ConfigShowOutput) error {
	if r.Structured() {
		return r.Structure(out)
	}
	for _, key := range out.UnknownKeys {
		r.Warning("unknown configuration key " + key)
	}

	r.Header("Configuration for " + out.Path)
	if len(out.Sources) == 0 {
		r.Println(r.FormatKeyValue("Sources", "none (built-in defaults)"))
	} else {
		r.Println(r.FormatKeyValue("Sources", strings.Join(out.Sources, " -> ")))
	}
	r.Println(r.FormatKeyValue("Base directory", out.Config.BaseDir))
	r.Println(r.FormatKeyValue("Include", listOrDash(out.Config.Global.Include)))
	r.Println(r.FormatKeyValue("Exclude", listOrDash(out.Config.Global.Exclude)))
	r.Println("")

	rows := make([][]string, 0, len(out.Config.Rules))
	for _, rule := range out.Config.Rules {
		enabled := "no"
		if rule.Enabled {
			enabled = "yes"
		}
		rows = append(rows, []string{
			rule.Name,
			enabled,
			rule.Severity.String(),
			listOrDash(rule.Include),
			listOrDash(rule.Exclude),
			formatParams(rule.Params),
		})
	}
	r.Table([]string{"Rule", "Enabled", "Severity", "Include", "Exclude", "Params"}, rows)
	return nil
}

func listOrDash(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, ", ")
}

func formatParams(p any) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%+v", p)
}
