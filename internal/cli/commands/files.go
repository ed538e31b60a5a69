package commands

import (
	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/spf13/cobra"
)

// FilesOutput is the structured output of files.
type FilesOutput struct {
	Files []string `json:"files" yaml:"files"`
	Count int      `json:"count" yaml:"count"`
}

// NewFilesCommand creates the files command.
func NewFilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "files [paths...]",
		Short: "List the Ruby files that would be checked",
		Long: `List the files collected under the given paths after applying the
target patterns and every AllCops Include/Exclude list on the way down.`,
		Example: `  leuko files
  leuko files app spec -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			files, err := cmdCtx.Engine.Collect(cmd.Context(), defaultPaths(args))
			if err != nil {
				return err
			}
			return renderFiles(cmdCtx.Renderer, files)
		},
	}
}

func renderFiles(r *output.Renderer, files []string) error {
	if r.Structured() {
		if files == nil {
			files = []string{}
		}
		return r.Structure(FilesOutput{Files: files, Count: len(files)})
	}
	for _, f := range files {
		r.Println(f)
	}
	return nil
}
