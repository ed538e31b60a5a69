// Package cli provides the command-line interface for leuko.
package cli

import (
	"fmt"
	"os"

	"github.com/qraqras/leukocyte-sub000/internal/cli/commands"
	"github.com/qraqras/leukocyte-sub000/internal/cli/config"
	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var settingsFile string

	rootCmd := &cobra.Command{
		Use:   "leuko",
		Short: "leuko - RuboCop configuration resolver",
		Long: `leuko resolves RuboCop configuration for Ruby source trees.

It discovers .rubocop.yml files, follows inherit_from chains, merges them
onto the built-in defaults and reports which rules apply to each file,
with their severity, include/exclude patterns and parameters.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip settings loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(settingsFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if cfg.SettingsFile != "" {
				logger.Debug("using settings file", "path", cfg.SettingsFile)
			}
			logger.Debug("resolved settings", "project_dir", cfg.ProjectDir, "config", cfg.ConfigPath,
				"workers", cfg.Workers, "sidecar", cfg.UseSidecar)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "leuko settings file (default: leuko.yaml in the project)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "RuboCop configuration file to use instead of discovery")
	rootCmd.PersistentFlags().String("project-dir", "", "Project root (default: nearest directory with leuko.yaml, else cwd)")
	rootCmd.PersistentFlags().Int("workers", 0, "Number of concurrent workers (0 = one per CPU)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("use-sidecar", false, "Read the .leukocyte snapshots written by sync")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yml", "yaml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewFilesCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewSyncCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leuko.

To load completions:

Bash:
  $ source <(leuko completion bash)

Zsh:
  $ leuko completion zsh > "${fpath[1]}/_leuko"

Fish:
  $ leuko completion fish | source

PowerShell:
  PS> leuko completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
