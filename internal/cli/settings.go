package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AstralShardio/pastemyprompt/internal/format"
	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/session"
)

type settingsOut struct {
	Dir             string        `json:"dir"`
	SortBy          model.SortKey `json:"sortBy"`
	DarkMode        bool          `json:"darkMode"`
	Pro             bool          `json:"pro"`
	FirstTimeUser   bool          `json:"firstTimeUser"`
	Threshold       float64       `json:"similarityThreshold"`
	UndoWindow      string        `json:"undoWindow"`
	EdgeFraction    float64       `json:"dropEdgeFraction"`
	CustomProjects  int           `json:"customProjects"`
	MaxFreeProjects int           `json:"maxFreeProjects"`
}

func (o settingsOut) RenderText() string {
	rows := [][]string{
		{"dir", o.Dir},
		{"sort", string(o.SortBy)},
		{"dark-mode", strconv.FormatBool(o.DarkMode)},
		{"pro", strconv.FormatBool(o.Pro)},
		{"onboarded", strconv.FormatBool(!o.FirstTimeUser)},
		{"similarity threshold", strconv.FormatFloat(o.Threshold, 'f', -1, 64)},
		{"undo window", o.UndoWindow},
		{"custom projects", fmt.Sprintf("%d / %s", o.CustomProjects, projectLimit(o))},
	}
	return format.Table([]string{"Setting", "Value"}, rows)
}

func projectLimit(o settingsOut) string {
	if o.Pro {
		return "unlimited"
	}
	return strconv.Itoa(o.MaxFreeProjects)
}

func settingsOf(app *App, s *session.Session) settingsOut {
	db := s.DB()
	st := s.Settings()
	return settingsOut{
		Dir:             app.Dir,
		SortBy:          db.SortBy,
		DarkMode:        db.DarkMode,
		Pro:             s.Pro(),
		FirstTimeUser:   db.FirstTimeUser,
		Threshold:       st.Threshold,
		UndoWindow:      st.UndoWindow.String(),
		EdgeFraction:    st.EdgeFraction,
		CustomProjects:  db.CustomProjectCount(),
		MaxFreeProjects: mutate.MaxFreeCustomProjects,
	}
}

var settingKeys = []string{"sort", "dark-mode", "pro", "onboarded"}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show preferences and effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": settingsOf(app, s)})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a preference: " + strings.Join(settingKeys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: settingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openSession()
			if err != nil {
				return writeErr(cmd, err)
			}
			key, value := strings.ToLower(args[0]), args[1]
			switch key {
			case "sort", "sort-by":
				_, err = s.SetSortBy(value)
			case "dark-mode", "pro", "onboarded":
				on, perr := strconv.ParseBool(value)
				if perr != nil {
					return writeErr(cmd, fmt.Errorf("%s expects true or false, got %q", key, value))
				}
				switch key {
				case "dark-mode":
					err = s.SetDarkMode(on)
				case "pro":
					err = s.SetPro(on)
				case "onboarded":
					if !on {
						return writeErr(cmd, fmt.Errorf("onboarding can only be completed"))
					}
					err = s.CompleteOnboarding()
				}
			default:
				return writeErr(cmd, fmt.Errorf("unknown setting %q (use %s)", key, strings.Join(settingKeys, ", ")))
			}
			return finish(cmd, app, settingsOf(app, s), err)
		},
	})
	return cmd
}
