package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/publish"
)

type publishOut publish.WriteResult

func (p publishOut) RenderText() string {
	return lines(p.Written).RenderText()
}

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var opt publish.WriteOptions

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write prompts out as Markdown pages",
	}

	run := func(cmd *cobra.Command, write func(opt publish.WriteOptions) (publish.WriteResult, error)) error {
		if strings.TrimSpace(toDir) == "" {
			return writeErr(cmd, errors.New("missing --to"))
		}
		res, err := write(opt)
		if err != nil {
			return writeErr(cmd, err)
		}
		return writeOut(cmd, app, map[string]any{"data": publishOut(res)})
	}

	promptCmd := &cobra.Command{
		Use:   "prompt <prompt-id>",
		Short: "Publish a single prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return run(cmd, func(opt publish.WriteOptions) (publish.WriteResult, error) {
				return publish.WritePrompt(s.DB(), args[0], toDir, opt)
			})
		},
	}
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Publish an index plus one page per prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return run(cmd, func(opt publish.WriteOptions) (publish.WriteResult, error) {
				return publish.WriteLibrary(s.DB(), toDir, opt)
			})
		},
	}
	libraryCmd.Flags().StringVar(&opt.ProjectID, "project", "", "Only this project and its sub-projects")

	for _, c := range []*cobra.Command{promptCmd, libraryCmd} {
		c.Flags().StringVar(&toDir, "to", "", "Output directory")
		c.Flags().BoolVar(&opt.IncludeArchived, "include-archived", false, "Include archived prompts")
		c.Flags().BoolVar(&opt.IncludeHistory, "history", false, "Include earlier versions")
		c.Flags().BoolVar(&opt.Overwrite, "overwrite", false, "Replace existing files")
		cmd.AddCommand(c)
	}
	return cmd
}
