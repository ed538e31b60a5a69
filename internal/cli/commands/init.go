package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qraqras/leukocyte-sub000/internal/cli/config"
	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
	"github.com/spf13/cobra"
)

const settingsTemplate = `# leuko settings. Flags and LEUKO_* environment variables take precedence.

# RuboCop configuration to use instead of discovery (optional).
# config: .rubocop.yml

# Concurrency; 0 means one worker per CPU.
workers: 0

# Output format: auto, text, markdown, json or yaml.
output: auto

# Read the .leukocyte sidecar snapshots written by 'leuko sync'.
use_sidecar: false

watch:
  debounce: 100ms
`

// InitOptions holds options for the init command.
type InitOptions struct {
	Gitignore bool // Append ignore rules to .gitignore
	Settings  bool // Write a leuko.yaml template
	Force     bool // Overwrite an existing leuko.yaml
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize the .leukocyte sidecar directory",
		Long: `Create the .leukocyte directory that holds resolved configuration
snapshots, with a README and a gitignore template.

This creates:
  - .leukocyte/README
  - .leukocyte/gitignore.template
  - leuko.yaml (with --write-settings)

Run 'leuko sync' afterwards to generate the snapshots.`,
		Example: `  # Initialize the current project
  leuko init

  # Also append the ignore rules to .gitignore and write leuko.yaml
  leuko init --gitignore --write-settings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.FromContext(cmd.Context()).ProjectDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				dir = "."
			}
			return runInit(NewCommandContextWithoutEngine(cmd).Renderer, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Gitignore, "gitignore", false, "Append the ignore rules to .gitignore")
	cmd.Flags().BoolVar(&opts.Settings, "write-settings", false, "Write a leuko.yaml template")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing leuko.yaml")

	return cmd
}

func runInit(r *output.Renderer, dir string, opts *InitOptions) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if opts.Settings {
		path := filepath.Join(dir, config.SettingsFileNames[0])
		if _, err := os.Stat(path); err == nil && !opts.Force {
			return fmt.Errorf("%s already exists. Use --force to overwrite", path)
		}
		if err := os.WriteFile(path, []byte(settingsTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		r.Success("Wrote " + path)
	}

	sidecarDir, err := sidecar.Init(dir, sidecar.InitOptions{ApplyGitignore: opts.Gitignore})
	if err != nil {
		return err
	}
	r.Success("Initialized " + sidecarDir)
	if opts.Gitignore {
		r.Success("Updated " + filepath.Join(dir, ".gitignore"))
	}
	r.Println(r.Muted("Next: run 'leuko sync' to write configuration snapshots"))
	return nil
}
