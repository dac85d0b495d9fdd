package cli

import (
	"github.com/spf13/cobra"
)

func newTemplatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "Reusable prompt templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": templateList(s.DB().Templates)})
		},
	})

	var name string
	save := &cobra.Command{
		Use:   "save <prompt-id>",
		Short: "Save a prompt as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			tpl, err := s.SaveTemplate(args[0], name)
			return finish(cmd, app, tpl, err)
		},
	}
	save.Flags().StringVar(&name, "name", "", "Template name (default: the prompt title)")
	cmd.AddCommand(save)

	var (
		title, project string
		accept         bool
	)
	use := &cobra.Command{
		Use:   "use <template-id>",
		Short: "Create a prompt from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.UseTemplate(args[0], title, project, accept)
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
	use.Flags().StringVar(&title, "title", "", "Title for the new prompt (default: the template's)")
	use.Flags().StringVar(&project, "project", "", "Project id (default: the template's, else general)")
	use.Flags().BoolVar(&accept, "accept-duplicates", false, "Save even when similar prompts exist")
	cmd.AddCommand(use)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			err = s.DeleteTemplate(args[0])
			return finish(cmd, app, map[string]any{"deleted": args[0]}, err)
		},
	})
	return cmd
}
