package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/clipboard"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/schedule"
	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/transfer"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification is the user-facing form of an action's outcome.
type Notification struct {
	Level   Level  `json:"level"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (n Notification) String() string { return n.Message }

// Describe converts an action error into a notification. It never returns an empty
// message for a non-nil error.
func Describe(err error) Notification {
	if err == nil {
		return Notification{Level: LevelInfo, Kind: "ok", Message: "done"}
	}
	var (
		ve  mutate.ValidationError
		nf  mutate.NotFoundError
		tnf tree.NotFoundError
		lp  mutate.LockedProjectError
		lt  tree.LockedTargetError
		ce  tree.CycleError
		cr  mutate.ConfirmationRequiredError
		dup mutate.DuplicatesFoundError
		ie  transfer.ImportFormatError
		ae  clipboard.AccessError
		pe  store.PersistenceError
		ue  schedule.UndoExpiredError
	)
	switch {
	case errors.As(err, &dup):
		titles := make([]string, 0, len(dup.Matches))
		for _, m := range dup.Matches {
			titles = append(titles, fmt.Sprintf("%q (%d%%)", m.Prompt.Title, m.Percent))
		}
		return Notification{LevelWarn, "duplicates", "Similar prompts already exist: " + strings.Join(titles, ", ")}
	case errors.As(err, &ve):
		return Notification{LevelWarn, "validation", ve.Error()}
	case errors.As(err, &ce):
		return Notification{LevelWarn, "cycle", "Cannot move a project inside itself or one of its sub-projects"}
	case errors.As(err, &lt):
		return Notification{LevelWarn, "locked", "Built-in projects cannot be nested or nest other projects"}
	case errors.As(err, &lp):
		return Notification{LevelWarn, "locked", lp.Error()}
	case errors.As(err, &nf):
		return Notification{LevelWarn, "not_found", nf.Error()}
	case errors.As(err, &tnf):
		return Notification{LevelWarn, "not_found", tnf.Error()}
	case errors.As(err, &cr):
		return Notification{LevelWarn, "confirm", cr.Error()}
	case errors.As(err, &ie):
		return Notification{LevelError, "import", "Import failed, nothing was changed: " + ie.Error()}
	case errors.As(err, &ae):
		return Notification{LevelError, "clipboard", "Clipboard unavailable: " + ae.Error()}
	case errors.As(err, &pe):
		return Notification{LevelError, "persistence", "Changes are kept for this session but could not be saved: " + pe.Error()}
	case errors.As(err, &ue):
		return Notification{LevelInfo, "undo_expired", "Undo is no longer available"}
	}
	return Notification{LevelError, "error", err.Error()}
}

// Applied reports whether the action took effect in memory.
func Applied(err error) bool {
	var pe store.PersistenceError
	return err == nil || errors.As(err, &pe)
}
