package cli

import (
	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/view"
)

func newTagsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "Tag commands",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tags by usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			counts := view.TagCounts(s.DB())
			if counts == nil {
				counts = []view.TagCount{}
			}
			return writeOut(cmd, app, map[string]any{"data": tagList(counts)})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "suggest <input>",
		Short: "Suggest existing tags matching a partial tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			out := s.TagSuggestions(args[0])
			if out == nil {
				out = []string{}
			}
			return writeOut(cmd, app, map[string]any{"data": lines(out)})
		},
	})
	return cmd
}
