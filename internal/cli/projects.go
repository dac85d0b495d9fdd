package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsTreeCmd(app))
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsRenameCmd(app))
	cmd.AddCommand(newProjectsMetaCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	cmd.AddCommand(newProjectsMoveCmd(app))
	cmd.AddCommand(newProjectsDropCmd(app))
	cmd.AddCommand(newProjectsExpandCmd(app, "expand", true))
	cmd.AddCommand(newProjectsExpandCmd(app, "collapse", false))
	return cmd
}

func newProjectsListCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects in tree order (collapsed children hidden)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			counts := s.ProjectCounts()
			expand := tree.ExpandState(s.DB().Expanded)
			out := projectRows{}
			if all {
				tree.Walk(s.Forest(), func(n *tree.Node, depth int) {
					out = append(out, projectRow{Project: n.Project, Prompts: counts[n.Project.ID], Expanded: expand.IsExpanded(n.Project.ID), Depth: depth})
				})
			} else {
				for _, r := range s.Rows() {
					out = append(out, projectRow{Project: r.Node.Project, Prompts: counts[r.Node.Project.ID], Expanded: r.Expanded, Depth: r.Depth})
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include children of collapsed projects")
	return cmd
}

func newProjectsTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show the full project tree with prompt counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": projectTree{Forest: s.Forest(), Counts: s.ProjectCounts()}})
		},
	}
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	var in mutate.ProjectInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.CreateProject(in)
			return finish(cmd, app, p, err)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Project name (required, unique)")
	cmd.Flags().StringVar(&in.ParentID, "parent", "", "Parent project id")
	cmd.Flags().StringVar(&in.Color, "color", "", "Display color")
	cmd.Flags().StringVar(&in.Icon, "icon", "", "Display icon")
	cmd.Flags().StringVar(&in.Description, "description", "", "Description")
	return cmd
}

func newProjectsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project-id> <name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.RenameProject(args[0], args[1])
			return finish(cmd, app, p, err)
		},
	}
}

func newProjectsMetaCmd(app *App) *cobra.Command {
	var color, icon, description string
	cmd := &cobra.Command{
		Use:   "meta <project-id>",
		Short: "Set a project's color, icon or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var meta mutate.ProjectMeta
			if cmd.Flags().Changed("color") {
				meta.Color = &color
			}
			if cmd.Flags().Changed("icon") {
				meta.Icon = &icon
			}
			if cmd.Flags().Changed("description") {
				meta.Description = &description
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.UpdateProjectMeta(args[0], meta)
			return finish(cmd, app, p, err)
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "Display color")
	cmd.Flags().StringVar(&icon, "icon", "", "Display icon")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project (its prompts move to General, sub-projects move up)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.DeleteProject(args[0])
			return finish(cmd, app, map[string]any{
				"deleted":    res.Project,
				"reassigned": res.Reassigned,
				"reparented": res.Reparented,
			}, err)
		},
	}
}

func newProjectsMoveCmd(app *App) *cobra.Command {
	var (
		into, before, after string
		root                bool
	)
	cmd := &cobra.Command{
		Use:   "move <project-id>",
		Short: "Nest, reorder or un-nest a project",
		Example: strings.TrimSpace(`
  pastemyprompt projects move proj-a --into proj-b      # nest under proj-b
  pastemyprompt projects move proj-a --before proj-c    # sibling of proj-c, before it
  pastemyprompt projects move proj-a --root             # to the end of the top level
  pastemyprompt projects move proj-a --root --after x   # top level, right after x
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := placementFromFlags(into, before, after, root)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.MoveProject(args[0], pl)
			return finish(cmd, app, p, err)
		},
	}
	cmd.Flags().StringVar(&into, "into", "", "Nest under this project (after its last child)")
	cmd.Flags().StringVar(&before, "before", "", "Place before this sibling")
	cmd.Flags().StringVar(&after, "after", "", "Place after this sibling")
	cmd.Flags().BoolVar(&root, "root", false, "Move to the top level")
	return cmd
}

func placementFromFlags(into, before, after string, root bool) (tree.Placement, error) {
	set := 0
	for _, v := range []string{into, before, after} {
		if v != "" {
			set++
		}
	}
	switch {
	case into != "" && (set > 1 || root):
		return tree.Placement{}, fmt.Errorf("--into cannot be combined with other placement flags")
	case into != "":
		return tree.Placement{Mode: tree.ModeNest, Parent: into}, nil
	case set > 1:
		return tree.Placement{}, fmt.Errorf("use only one of --before and --after")
	}
	anchor, isAfter := before, false
	if after != "" {
		anchor, isAfter = after, true
	}
	if root {
		return tree.Placement{Mode: tree.ModeUnnest, Anchor: anchor, After: isAfter}, nil
	}
	if anchor == "" {
		return tree.Placement{}, fmt.Errorf("one of --into, --before, --after or --root is required")
	}
	return tree.Placement{Mode: tree.ModeReorder, Anchor: anchor, After: isAfter}, nil
}

func newProjectsDropCmd(app *App) *cobra.Command {
	var offset, height float64
	cmd := &cobra.Command{
		Use:   "drop <dragged-id> <target-id>",
		Short: "Apply a drag-and-drop onto a target row (edges reorder, the middle nests)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			d, err := s.DropProject(args[0], args[1], offset, height)
			out := map[string]any{"mode": d.Mode.String()}
			if p, ok := s.DB().FindProject(args[0]); ok {
				out["project"] = *p
			}
			return finish(cmd, app, out, err)
		},
	}
	cmd.Flags().Float64Var(&offset, "offset", 0.5, "Cursor position from the top of the target row")
	cmd.Flags().Float64Var(&height, "height", 1, "Height of the target row")
	return cmd
}

func newProjectsExpandCmd(app *App, use string, expanded bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a project in the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			err = s.SetExpanded(args[0], expanded)
			return finish(cmd, app, map[string]any{"id": args[0], "expanded": expanded}, err)
		},
	}
}
