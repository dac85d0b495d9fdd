package transfer

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// DefaultTextTitle names the prompt made from text with no separators.
const DefaultTextTitle = "Imported Prompt"

const maxTextTitleRunes = 100

var (
	reSeparatorLine = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|={3,})[ \t]*$`)
	reBlankRun      = regexp.MustCompile(`\n[ \t]*\n[ \t]*\n`)
)

// SplitText cuts text into sections at lines of --- or === and at runs of two or more
// blank lines. It reports whether any separator was found.
func SplitText(text string) ([]string, bool) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := reSeparatorLine.Split(text, -1)
	var out []string
	for _, p := range parts {
		out = append(out, reBlankRun.Split(p, -1)...)
	}
	sections := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			sections = append(sections, s)
		}
	}
	return sections, len(out) > 1
}

func titleAndBody(section string) (string, string) {
	first, rest, _ := strings.Cut(section, "\n")
	title := strings.TrimSpace(first)
	body := strings.TrimSpace(rest)
	if body == "" {
		body = title
	}
	if r := []rune(title); len(r) > maxTextTitleRunes {
		title = string(r[:maxTextTitleRunes])
	}
	return title, body
}

// ImportText turns plain text into prompts in the general project. With separators each
// section becomes a prompt titled by its first line; otherwise the whole text becomes a
// single prompt named DefaultTextTitle.
func ImportText(db *store.DB, text string, now time.Time) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ImportFormatError{Kind: "text", Err: errors.New("nothing to import")}
	}
	sections, split := SplitText(text)
	if split && len(sections) == 0 {
		return Result{}, ImportFormatError{Kind: "text", Err: errors.New("only separators found")}
	}

	type entry struct{ title, body string }
	var entries []entry
	if !split {
		entries = append(entries, entry{DefaultTextTitle, strings.TrimSpace(text)})
	} else {
		for _, s := range sections {
			t, b := titleAndBody(s)
			entries = append(entries, entry{t, b})
		}
	}

	work := db.Clone()
	var res Result
	for _, e := range entries {
		_, err := mutate.CreatePrompt(work, mutate.PromptInput{
			Title:     e.title,
			Prompt:    e.body,
			ProjectID: model.ProjectGeneral,
		}, mutate.CreateOptions{AcceptDuplicates: true}, now)
		if err != nil {
			return Result{}, err
		}
		res.PromptsAdded++
	}
	*db = *work
	return res, nil
}
