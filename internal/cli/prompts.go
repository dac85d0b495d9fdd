package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/vars"
	"github.com/AstralShardio/pastemyprompt/internal/view"
)

func newPromptsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prompts",
		Aliases: []string{"prompt", "p"},
		Short:   "Prompt commands",
	}
	cmd.AddCommand(newPromptsListCmd(app))
	cmd.AddCommand(newPromptsAddCmd(app))
	cmd.AddCommand(newPromptsQuickAddCmd(app))
	cmd.AddCommand(newPromptsShowCmd(app))
	cmd.AddCommand(newPromptsEditCmd(app))
	cmd.AddCommand(newPromptsCopyCmd(app))
	cmd.AddCommand(newPromptsRecentCmd(app))
	cmd.AddCommand(newPromptsFavoriteCmd(app, "favorite", true))
	cmd.AddCommand(newPromptsFavoriteCmd(app, "unfavorite", false))
	cmd.AddCommand(newPromptsDuplicateCmd(app))
	cmd.AddCommand(newPromptsArchiveCmd(app))
	cmd.AddCommand(newPromptsArchivedCmd(app))
	cmd.AddCommand(newPromptsRestoreCmd(app))
	cmd.AddCommand(newPromptsDeleteCmd(app))
	cmd.AddCommand(newPromptsHistoryCmd(app))
	cmd.AddCommand(newPromptsRevertCmd(app))
	cmd.AddCommand(newPromptsDupesCmd(app))
	cmd.AddCommand(newPromptsMergeCmd(app))
	cmd.AddCommand(newPromptsVarsCmd(app))
	cmd.AddCommand(newPromptsSearchCmd(app))
	return cmd
}

func rowOf(s *session.Session, p model.Prompt) promptRow {
	db := s.DB()
	return promptRow{Prompt: p, Favorite: db.IsFavorite(p.ID), Archived: db.IsArchived(p.ID)}
}

func rowsOf(s *session.Session, ps []model.Prompt) promptRows {
	out := make(promptRows, 0, len(ps))
	for _, p := range ps {
		out = append(out, rowOf(s, p))
	}
	return out
}

// readBody returns the literal flag value, or the contents of file ("-" reads stdin).
func readBody(cmd *cobra.Command, literal, file string) (string, error) {
	if file == "" {
		return literal, nil
	}
	if literal != "" {
		return "", fmt.Errorf("use either --body or --body-file, not both")
	}
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func newPromptsListCmd(app *App) *cobra.Command {
	var (
		favorites bool
		project   string
		query     string
		tags      []string
		projects  []string
		dateRange string
		sortBy    string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List visible prompts (favorites first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := view.Filters{
				FavoritesOnly:  favorites,
				CurrentProject: strings.TrimSpace(project),
				Query:          query,
				Tags:           tags,
				Projects:       projects,
			}
			if dateRange != "" {
				r, ok := view.ParseDateRange(dateRange)
				if !ok {
					return writeErr(cmd, fmt.Errorf("invalid --range %q (use all, today, week or month)", dateRange))
				}
				f.DateRange = r
			}
			if sortBy != "" {
				k, ok := model.ParseSortKey(sortBy)
				if !ok {
					return writeErr(cmd, fmt.Errorf("invalid --sort %q (use lastUsed, copyCount, title or createdAt)", sortBy))
				}
				f.SortBy = k
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowsOf(s, s.List(f))})
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only favorites")
	cmd.Flags().StringVar(&project, "project", "", "Only prompts in this project")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search title, body and tags")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Keep prompts with any of these tags (repeatable)")
	cmd.Flags().StringSliceVar(&projects, "projects", nil, "Keep prompts in any of these projects (ignored with --project)")
	cmd.Flags().StringVar(&dateRange, "range", "", "Last used within: today|week|month|all")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort by: lastUsed|copyCount|title|createdAt (default: stored preference)")
	return cmd
}

func newPromptsAddCmd(app *App) *cobra.Command {
	var (
		title, body, bodyFile, project, tags string
		accept                               bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a prompt",
		Example: strings.TrimSpace(`
  pastemyprompt prompts add --title "Summarize" --body "Summarize {{topic}} in 3 bullets" --tags writing,ai
  pbpaste | pastemyprompt prompts add --title "From clipboard" --body-file -
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readBody(cmd, body, bodyFile)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.CreatePrompt(mutate.PromptInput{
				Title:     title,
				Prompt:    text,
				Tags:      mutate.ParseTags(tags),
				ProjectID: project,
			}, accept)
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title (required)")
	cmd.Flags().StringVar(&body, "body", "", "Prompt text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read prompt text from a file (- for stdin)")
	cmd.Flags().StringVar(&project, "project", "", "Project id (default: general)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().BoolVar(&accept, "accept-duplicates", false, "Save even when similar prompts exist")
	return cmd
}

func newPromptsQuickAddCmd(app *App) *cobra.Command {
	var (
		project string
		accept  bool
	)
	cmd := &cobra.Command{
		Use:   "quick-add",
		Short: "Create a prompt from the clipboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.QuickAdd(project, accept)
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Project id (default: general)")
	cmd.Flags().BoolVar(&accept, "accept-duplicates", false, "Save even when similar prompts exist")
	return cmd
}

func newPromptsShowCmd(app *App) *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "show <prompt-id>",
		Short: "Show a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.Prompt(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if render {
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					return writeErr(cmd, err)
				}
				out, err := r.Render("# " + p.Title + "\n\n" + p.Prompt)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": promptDetail{promptRow: rowOf(s, p), Variables: vars.Names(p.Prompt)}})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render the prompt as Markdown in the terminal")
	return cmd
}

func newPromptsEditCmd(app *App) *cobra.Command {
	var title, body, bodyFile, project, tags string
	cmd := &cobra.Command{
		Use:   "edit <prompt-id>",
		Short: "Edit a prompt (the previous version goes to history)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch mutate.PromptPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("body") || cmd.Flags().Changed("body-file") {
				text, err := readBody(cmd, body, bodyFile)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Prompt = &text
			}
			if cmd.Flags().Changed("tags") {
				ts := mutate.ParseTags(tags)
				patch.Tags = &ts
			}
			if cmd.Flags().Changed("project") {
				patch.ProjectID = &project
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.EditPrompt(args[0], patch)
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&body, "body", "", "New prompt text")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read new prompt text from a file (- for stdin)")
	cmd.Flags().StringVar(&project, "project", "", "Move to project id")
	cmd.Flags().StringVar(&tags, "tags", "", "Replace tags (comma-separated)")
	return cmd
}

func newPromptsCopyCmd(app *App) *cobra.Command {
	var assignments []string
	cmd := &cobra.Command{
		Use:   "copy <prompt-id>",
		Short: "Copy a prompt to the clipboard, filling {{variables}}",
		Example: strings.TrimSpace(`
  pastemyprompt prompts copy pr-abcd1234 --var name=Ada --var product="Prompt Kit"
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Copy(args[0], vars.ParseAssignments(assignments))
			return finish(cmd, app, copyOut(res), err)
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "var", nil, "Variable value name=value (repeatable)")
	return cmd
}

type copyOut session.CopyResult

func (c copyOut) RenderText() string {
	msg := fmt.Sprintf("Copied %q to the clipboard.", c.Prompt.Title)
	if len(c.Unfilled) > 0 {
		msg += "\n" + fmt.Sprintf("Unfilled variables: %s", strings.Join(c.Unfilled, ", "))
	}
	return msg
}

func newPromptsRecentCmd(app *App) *cobra.Command {
	var (
		copyN       int
		assignments []string
	)
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently copied prompts, or copy one by position",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cmd.Flags().Changed("copy") {
				res, err := s.CopyRecent(copyN, vars.ParseAssignments(assignments))
				return finish(cmd, app, copyOut(res), err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowsOf(s, view.RecentPrompts(s.DB()))})
		},
	}
	cmd.Flags().IntVar(&copyN, "copy", 0, "Copy the n-th recent prompt (1-3)")
	cmd.Flags().StringArrayVar(&assignments, "var", nil, "Variable value name=value (repeatable)")
	return cmd
}

func newPromptsFavoriteCmd(app *App, use string, on bool) *cobra.Command {
	short := "Mark a prompt as favorite"
	if !on {
		short = "Remove a prompt from favorites"
	}
	return &cobra.Command{
		Use:   use + " <prompt-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.SetFavorite(args[0], on)
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
}

func newPromptsDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <prompt-id>",
		Short: "Copy a prompt into a new one titled \"(Copy)\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.Duplicate(args[0])
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
}

type ticketOut session.ArchiveTicket

func (t ticketOut) RenderText() string {
	if t.Token == "" {
		return fmt.Sprintf("%q is already archived.", t.Prompt.Title)
	}
	return fmt.Sprintf("Archived %q. Undo until %s with:\n  pastemyprompt undo %s",
		t.Prompt.Title, t.Deadline.Local().Format("15:04:05"), t.Token)
}

func newPromptsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <prompt-id>",
		Short: "Archive a prompt (undoable for a short window)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := s.Archive(args[0])
			return finish(cmd, app, ticketOut(t), err)
		},
	}
}

func newUndoCmd(app *App) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "undo [token]",
		Short: "Undo an archive while its window is open (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			if list {
				pending := s.PendingUndo()
				if pending == nil {
					pending = []session.ArchiveTicket{}
				}
				return writeOut(cmd, app, map[string]any{"data": pending})
			}
			var p model.Prompt
			if len(args) == 1 {
				p, err = s.Undo(args[0])
			} else {
				p, err = s.UndoLatest()
			}
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "List pending undos instead")
	return cmd
}

func newPromptsArchivedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archived",
		Short: "List archived prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": rowsOf(s, s.Archived())})
		},
	}
}

func newPromptsRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <prompt-id>",
		Short: "Restore an archived prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.Restore(args[0])
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
}

func newPromptsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <prompt-id>",
		Short: "Permanently delete an archived prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			err = s.DeletePermanently(args[0], yes)
			return finish(cmd, app, map[string]any{"deleted": args[0]}, err)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the permanent delete")
	return cmd
}

func newPromptsHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <prompt-id>",
		Short: "List saved versions (newest first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			h, err := s.History(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if h == nil {
				h = []model.HistoryEntry{}
			}
			return writeOut(cmd, app, map[string]any{"data": historyList(h)})
		},
	}
}

func newPromptsRevertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revert <prompt-id> <index>",
		Short: "Revert a prompt to a history entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid history index %q", args[1]))
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.RevertPrompt(args[0], idx)
			return finish(cmd, app, rowOf(s, p), err)
		},
	}
}

func newPromptsDupesCmd(app *App) *cobra.Command {
	var fast bool
	cmd := &cobra.Command{
		Use:   "dupes [prompt-id]",
		Short: "Find similar prompts (all pairs when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(args) == 0 {
				pairs := s.ScanDuplicates(fast)
				if pairs == nil {
					pairs = pairList{}
				}
				return writeOut(cmd, app, map[string]any{"data": pairList(pairs)})
			}
			ms, err := s.Duplicates(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			out := matchList(ms)
			if out == nil {
				out = matchList{}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&fast, "fast", false, "Pre-filter candidate pairs with simhash fingerprints")
	return cmd
}

func newPromptsMergeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source-id> <target-id>",
		Short: "Merge a duplicate into another prompt and delete the source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Merge(args[0], args[1])
			out := map[string]any{"merged": res.Changed, "sourceId": args[0]}
			if res.Target != nil {
				out["target"] = rowOf(s, *res.Target)
			}
			return finish(cmd, app, out, err)
		},
	}
}

func newPromptsVarsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "vars <prompt-id>",
		Short: "List the {{variables}} in a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := s.Prompt(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": lines(vars.Names(p.Prompt))})
		},
	}
}

func newPromptsSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "search [query]",
		Aliases: []string{"palette"},
		Short:   "Quick search across all visible prompts",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			q := ""
			if len(args) == 1 {
				q = args[0]
			}
			return writeOut(cmd, app, map[string]any{"data": rowsOf(s, s.Palette(q))})
		},
	}
}
