package cli

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/docs"
	"github.com/AstralShardio/pastemyprompt/internal/format"
)

type topicList []string

func (l topicList) RenderText() string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{t, docs.Summary(t)})
	}
	return format.Table([]string{"Topic", "About"}, rows)
}

func newDocsCmd(app *App) *cobra.Command {
	var raw, render bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show help topics (variables, import, keys, projects, config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": topicList(docs.Topics())})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `pastemyprompt docs` to list topics)", topic))
			}

			switch {
			case render:
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					return writeErr(cmd, err)
				}
				out, err := r.Render(body)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), out)
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")
	cmd.Flags().BoolVar(&render, "render", false, "Render the topic for the terminal")

	return cmd
}
