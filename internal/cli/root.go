package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/clipboard"
	"github.com/AstralShardio/pastemyprompt/internal/config"
	"github.com/AstralShardio/pastemyprompt/internal/format"
	"github.com/AstralShardio/pastemyprompt/internal/logging"
	"github.com/AstralShardio/pastemyprompt/internal/session"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tui"
)

type App struct {
	Dir        string
	ConfigFile string
	PrettyJSON bool
	Format     string

	// Clipboard overrides the system clipboard. Tests set it.
	Clipboard clipboard.Clipboard

	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pastemyprompt",
		Short:        "PasteMyPrompt: a local prompt library (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  pastemyprompt

  # Save and copy prompts from scripts
  pastemyprompt prompts add --title "Cold email" --body "Write a cold email to {{name}}"
  pastemyprompt prompts copy pr-abcd1234 --var name=Ada

  # Organize projects
  pastemyprompt projects create --name Clients
  pastemyprompt projects tree --format text
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logCloser != nil {
			return app.logCloser.Close()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Path to the store dir (default: nearest .pastemyprompt, else ~/.pastemyprompt)")
	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", "", "Config file (default: ./config.yaml or ~/.pastemyprompt/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|yaml|text)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newPromptsCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newTemplatesCmd(app))
	cmd.AddCommand(newTagsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newBackupsCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newPublishCmd(app))

	return cmd
}

// setup resolves config, flags and logging. Flags win over config.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{File: app.ConfigFile})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	if !cmd.Flags().Changed("format") && app.Format == "" {
		app.Format = cfg.Format
	}
	if !cmd.Flags().Changed("pretty") && cfg.Pretty {
		app.PrettyJSON = true
	}
	switch app.Format {
	case "json", "yaml", "text":
	default:
		return writeErr(cmd, fmt.Errorf("unknown format: %s (use json, yaml or text)", app.Format))
	}
	if app.Dir == "" {
		app.Dir = cfg.Dir
	}
	if app.Dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Dir = d
	}

	log, closer, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Environment: cfg.Log.Env,
		File:        cfg.Log.File,
	}, cmd.ErrOrStderr())
	if err != nil {
		return writeErr(cmd, err)
	}
	app.log, app.logCloser = log, closer
	return nil
}

func (app *App) store() store.Store {
	return store.Store{Dir: app.Dir}
}

func (app *App) openSession() (*session.Session, error) {
	cfg := app.cfg
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	clip := app.Clipboard
	if clip == nil {
		clip = clipboard.System{}
	}
	return session.Open(session.Options{
		Persister: app.store(),
		Clipboard: clip,
		Logger:    app.log,
		Settings: session.Settings{
			Threshold:    cfg.Similarity.Threshold,
			UndoWindow:   cfg.Undo.Window,
			EdgeFraction: cfg.Tree.EdgeFraction,
			Pro:          cfg.Pro,
		},
		UndoFile: filepath.Join(app.Dir, session.UndoFileName),
	})
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := app.openSession()
	if err != nil {
		return writeErr(cmd, err)
	}
	debounce := config.Default().Search.Debounce
	if app.cfg != nil {
		debounce = app.cfg.Search.Debounce
	}
	return tui.Run(s, tui.Options{Store: app.store(), SearchDebounce: debounce})
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeErr prints the user-facing form of err and returns it so the command fails.
func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), session.Describe(err).Message)
	return err
}

// finish reports the result of a mutation. A save failure still prints the in-memory
// result, then fails the command.
func finish(cmd *cobra.Command, app *App, v any, err error) error {
	if err == nil {
		return writeOut(cmd, app, map[string]any{"data": v})
	}
	if session.Applied(err) {
		_ = writeOut(cmd, app, map[string]any{"data": v})
	}
	return writeErr(cmd, err)
}
