package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/format"
	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/transfer"
)

func newExportCmd(app *App) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects, prompts and recent as a JSON (or YAML) backup",
		Example: strings.TrimSpace(`
  pastemyprompt export > backup.json
  pastemyprompt export -o ` + transfer.DefaultExportFileName + `
  pastemyprompt export --format yaml
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			doc := s.Export()
			f := transfer.FormatJSON
			if app.Format == "yaml" {
				f = transfer.FormatYAML
			}
			if output == "" || output == "-" {
				return transfer.Write(cmd.OutOrStdout(), doc, f)
			}
			if err := writeFileAtomic(output, func(w io.Writer) error { return transfer.Write(w, doc, f) }); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":     output,
				"projects": len(doc.Projects),
				"prompts":  len(doc.Prompts),
			}})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

type importOut session.ImportOutcome

func (o importOut) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported %d prompt(s)", o.PromptsAdded)
	if o.PromptsMerged > 0 {
		fmt.Fprintf(&b, ", merged %d", o.PromptsMerged)
	}
	if o.ProjectsAdded > 0 {
		fmt.Fprintf(&b, ", added %d project(s)", o.ProjectsAdded)
	}
	if o.RowsSkipped > 0 {
		fmt.Fprintf(&b, ", skipped %d row(s)", o.RowsSkipped)
	}
	b.WriteString(".")
	if o.Backup != "" {
		b.WriteString("\n" + format.Muted("Previous state saved to "+o.Backup))
	}
	return b.String()
}

func newImportCmd(app *App) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import prompts from JSON, CSV or plain text (- reads stdin)",
		Long: strings.TrimSpace(`
Import prompts into the store. The format comes from --kind or the file extension:

  json  an export document; prompts with a known id are merged field by field
  csv   a header row naming title and prompt/content/text columns, optional tags and project
  text  sections separated by --- or === lines or two blank lines; the first line is the title

The current state is backed up before anything is changed. A file that cannot be parsed
changes nothing.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			k := kind
			if k == "" {
				if path == "-" {
					return writeErr(cmd, fmt.Errorf("--kind is required when reading stdin"))
				}
				k = filepath.Ext(path)
			}
			ik, err := session.ParseImportKind(k)
			if err != nil {
				return writeErr(cmd, err)
			}
			var data []byte
			if path == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Import(ik, data)
			return finish(cmd, app, importOut(res), err)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Input format: json|csv|text (default: from the file extension)")
	return cmd
}

func newBackupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backups",
		Aliases: []string{"backup"},
		Short:   "Backups written before imports and restores",
	}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := app.store().ListBackups()
			if err != nil {
				return writeErr(cmd, err)
			}
			if paths == nil {
				paths = []string{}
			}
			return writeOut(cmd, app, map[string]any{"data": lines(paths)})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "restore <path>",
		Short: "Replace the current state with a backup (the current state is backed up first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.RestoreBackup(args[0])
			return finish(cmd, app, importOut(res), err)
		},
	})
	return cmd
}
