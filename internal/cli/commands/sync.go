package commands

import (
	"errors"
	"path/filepath"

	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
	"github.com/spf13/cobra"
)

// SyncOutput is the structured output of sync.
type SyncOutput struct {
	Index   string               `json:"index" yaml:"index"`
	Entries []sidecar.IndexEntry `json:"entries" yaml:"entries"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [directory]",
		Short: "Write resolved configuration snapshots to .leukocyte",
		Long: `Resolve every RuboCop configuration file in the project and write one
JSON snapshot per directory plus an index to .leukocyte. With
use_sidecar enabled, file collection reads these snapshots instead of
resolving configuration again.

The project must have been initialized with 'leuko init'.`,
		Example: `  leuko sync
  leuko sync path/to/project -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dir := cmdCtx.Cfg.ProjectDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				dir = "."
			}

			entries, err := cmdCtx.Engine.Sync(cmd.Context(), dir)
			if errors.Is(err, sidecar.ErrNotInitialized) {
				return errors.New("project is not initialized; run 'leuko init' first")
			}
			if err != nil {
				return err
			}

			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			return renderSync(cmdCtx.Renderer, SyncOutput{Index: sidecar.IndexPath(abs), Entries: entries})
		},
	}
}

func renderSync(r *output.Renderer, out SyncOutput) error {
	if r.Structured() {
		return r.Structure(out)
	}
	if len(out.Entries) == 0 {
		r.Println("No configuration files found.")
		return nil
	}
	rows := make([][]string, len(out.Entries))
	for i, e := range out.Entries {
		rows[i] = []string{e.Src, filepath.Base(e.Out)}
	}
	r.Table([]string{"Source", "Snapshot"}, rows)
	r.Success("Wrote " + out.Index)
	return nil
}
