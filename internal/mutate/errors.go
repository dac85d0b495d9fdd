package mutate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AstralShardio/pastemyprompt/internal/similar"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ValidationError rejects user input. State is unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type LockedProjectError struct {
	ID     string
	Action string
}

func (e LockedProjectError) Error() string {
	return fmt.Sprintf("project %s is built in and cannot be %s", e.ID, e.Action)
}

// ConfirmationRequiredError is returned by irreversible operations called without an
// explicit confirmation.
type ConfirmationRequiredError struct {
	Action string
	ID     string
}

func (e ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s %s requires confirmation", e.Action, e.ID)
}

// DuplicatesFoundError stops a new prompt from being saved until the caller accepts the
// near-duplicates it lists.
type DuplicatesFoundError struct {
	Matches []similar.Match
}

func (e DuplicatesFoundError) Error() string {
	parts := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		parts = append(parts, fmt.Sprintf("%q (%d%%)", m.Prompt.Title, m.Percent))
	}
	return "similar prompts already exist: " + strings.Join(parts, ", ")
}

// validationFromOzzo converts ozzo field errors into a ValidationError for the first
// failing field, in sorted field order.
func validationFromOzzo(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for _, field := range sortedKeys(errs) {
			if fe := errs[field]; fe != nil {
				return ValidationError{Field: field, Message: fe.Error()}
			}
		}
	}
	return ValidationError{Message: err.Error()}
}

func sortedKeys(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
