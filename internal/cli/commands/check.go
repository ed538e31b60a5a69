package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/qraqras/leukocyte-sub000/internal/engine"
	"github.com/qraqras/leukocyte-sub000/internal/watch"
	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/spf13/cobra"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch   bool // Re-run when configuration files change
	Summary bool // Print only the totals
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Resolve the rules that apply to each Ruby file",
		Long: `Collect Ruby files under the given paths, resolve the RuboCop configuration
that governs each one and print the enabled rules grouped by node kind.

Configuration errors such as inheritance cycles or unreadable files abort
the run with a non-zero exit status.`,
		Example: `  # Check the current directory
  leuko check

  # Check two directories and print JSON
  leuko check app lib -o json

  # Re-run whenever a .rubocop.yml changes
  leuko check --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, defaultPaths(args), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when configuration files change")
	cmd.Flags().BoolVar(&opts.Summary, "summary", false, "Print only the totals")

	return cmd
}

func runCheck(cmd *cobra.Command, paths []string, opts *CheckOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !opts.Watch {
		return checkOnce(ctx, cmdCtx, paths, opts)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := checkOnce(ctx, cmdCtx, paths, opts); err != nil {
		cmdCtx.Renderer.Warning(err.Error())
	}
	return watchConfigs(ctx, cmdCtx, paths, opts)
}

func checkOnce(ctx context.Context, cmdCtx *CommandContext, paths []string, opts *CheckOptions) error {
	report, err := cmdCtx.Engine.Check(ctx, paths)
	if err != nil {
		return err
	}
	return renderCheck(cmdCtx.Renderer, report, opts)
}

func watchConfigs(ctx context.Context, cmdCtx *CommandContext, paths []string, opts *CheckOptions) error {
	w, err := watch.New(cmdCtx.Cfg.Watch.Debounce, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	for _, dir := range watchRoots(paths) {
		if err := w.AddTree(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	if err := w.Add(ancestors(watchRoots(paths))...); err != nil {
		return fmt.Errorf("failed to watch parent directories: %w", err)
	}

	r := cmdCtx.Renderer
	r.Println(r.Muted("Watching for configuration changes (Ctrl+C to stop)"))

	return w.Run(ctx, func(changed []string) {
		cmdCtx.Engine.Invalidate(changed)
		r.Println(r.Muted("Changed: " + strings.Join(changed, ", ")))
		if err := checkOnce(ctx, cmdCtx, paths, opts); err != nil {
			r.Warning(err.Error())
		}
	})
}

// watchRoots returns the absolute directories to watch recursively.
func watchRoots(paths []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			abs = filepath.Dir(abs)
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out
}

// ancestors returns the parents of dirs, where configuration that applies
// to them may live.
func ancestors(dirs []string) []string {
	seen := make(map[string]bool)
	for _, d := range dirs {
		seen[d] = true
	}
	var out []string
	for _, d := range dirs {
		for p := filepath.Dir(d); ; p = filepath.Dir(p) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
			if filepath.Dir(p) == p {
				break
			}
		}
	}
	return out
}

// CheckOutput is the structured output of check.
type CheckOutput struct {
	Files   []CheckFile  `json:"files" yaml:"files"`
	Summary CheckSummary `json:"summary" yaml:"summary"`
}

// CheckFile lists the rules resolved for one file.
type CheckFile struct {
	Path   string      `json:"path" yaml:"path"`
	Config string      `json:"config,omitempty" yaml:"config,omitempty"`
	Rules  []CheckRule `json:"rules" yaml:"rules"`
}

// CheckRule is one enabled rule.
type CheckRule struct {
	Name     string        `json:"name" yaml:"name"`
	Severity core.Severity `json:"severity" yaml:"severity"`
	Kinds    []string      `json:"kinds,omitempty" yaml:"kinds,omitempty"`
}

// CheckSummary holds the totals.
type CheckSummary struct {
	Files int `json:"files" yaml:"files"`
	Rules int `json:"rules" yaml:"rules"`
}

func buildCheckOutput(report *engine.Report) CheckOutput {
	out := CheckOutput{
		Files:   make([]CheckFile, 0, len(report.Files)),
		Summary: CheckSummary{Files: len(report.Files), Rules: report.RuleCount()},
	}
	for _, f := range report.Files {
		cf := CheckFile{Path: f.Path, Config: f.Config, Rules: []CheckRule{}}
		for _, rc := range f.RuleSet.Rules() {
			kinds := make([]string, len(rc.Descriptor.NodeKinds))
			for i, k := range rc.Descriptor.NodeKinds {
				kinds[i] = k.String()
			}
			cf.Rules = append(cf.Rules, CheckRule{Name: rc.Name(), Severity: rc.Severity, Kinds: kinds})
		}
		out.Files = append(out.Files, cf)
	}
	return out
}

func renderCheck(r *output.Renderer, report *engine.Report, opts *CheckOptions) error {
	if r.Structured() {
		return r.Structure(buildCheckOutput(report))
	}

	summary := fmt.Sprintf("%d files, %d rule applications", len(report.Files), report.RuleCount())
	if opts.Summary {
		r.Println(summary)
		return nil
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		renderCheckMarkdown(r, report)
		r.Println("")
		r.Println("_" + summary + "_")
		return nil
	}

	styles := r.Styles()
	for _, f := range report.Files {
		cfg := "no configuration"
		if f.Config != "" {
			cfg = f.Config
		}
		r.Printf("%s  %s\n", styles.Path.Render(f.Path), styles.Muted.Render("("+cfg+")"))
		for _, kind := range f.RuleSet.Kinds() {
			for _, rc := range f.RuleSet.For(kind) {
				r.Printf("  %-10s %s %s\n",
					kind.String(),
					rc.Name(),
					styles.Severity(rc.Severity).Render(rc.Severity.String()),
				)
			}
		}
	}
	r.Println("")
	r.Println(styles.Bold.Render(summary))
	return nil
}

func renderCheckMarkdown(r *output.Renderer, report *engine.Report) {
	r.Println("# Check")
	for _, f := range report.Files {
		r.Println("")
		r.Printf("## %s\n\n", f.Path)
		if f.Config != "" {
			r.Printf("Configuration: `%s`\n\n", f.Config)
		}
		if f.RuleSet.Empty() {
			r.Println("No rules apply.")
			continue
		}
		for _, kind := range f.RuleSet.Kinds() {
			names := make([]string, 0, len(f.RuleSet.For(kind)))
			for _, rc := range f.RuleSet.For(kind) {
				names = append(names, fmt.Sprintf("%s (`%s`)", rc.Name(), rc.Severity))
			}
			r.Printf("- **%s**: %s\n", kind, strings.Join(names, ", "))
		}
	}
}
