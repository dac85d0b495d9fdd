package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	var here bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the store (seeds sample prompts on first run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if here && !cmd.Flags().Changed("dir") {
				cwd, err := os.Getwd()
				if err != nil {
					return writeErr(cmd, err)
				}
				app.Dir = filepath.Join(cwd, store.DirName)
			}
			if err := app.store().Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			db := s.DB()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"dir":      app.Dir,
				"projects": len(db.Projects),
				"prompts":  len(db.Prompts),
			}})
		},
	}
	cmd.Flags().BoolVar(&here, "here", false, "Create ./"+store.DirName+" in the working directory")
	return cmd
}
