package transfer

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

type csvColumns struct {
	title, body, tags, project int
}

var (
	titleNames   = []string{"title"}
	bodyNames    = []string{"prompt", "content", "text", "body"}
	tagNames     = []string{"tags", "tag"}
	projectNames = []string{"project"}
)

// detectColumns claims exact header names first and then falls back to substrings, so a
// column is only ever used for one field.
func detectColumns(header []string) (csvColumns, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	claimed := make([]bool, len(names))
	pick := func(keywords []string, match func(name, kw string) bool) int {
		for i, name := range names {
			if claimed[i] {
				continue
			}
			for _, kw := range keywords {
				if match(name, kw) {
					claimed[i] = true
					return i
				}
			}
		}
		return -1
	}
	exact := func(name, kw string) bool { return name == kw }

	cols := csvColumns{title: -1, body: -1, tags: -1, project: -1}
	fields := []struct {
		col      *int
		keywords []string
	}{
		{&cols.title, titleNames},
		{&cols.body, bodyNames},
		{&cols.tags, tagNames},
		{&cols.project, projectNames},
	}
	for _, f := range fields {
		*f.col = pick(f.keywords, exact)
	}
	for _, f := range fields {
		if *f.col < 0 {
			*f.col = pick(f.keywords, strings.Contains)
		}
	}
	switch {
	case cols.title < 0:
		return cols, errors.New("header has no title column")
	case cols.body < 0:
		return cols, errors.New("header has no prompt, content, text or body column")
	}
	return cols, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func splitCSVTags(s string) []string {
	return mutate.CleanTags(strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }))
}

// ImportCSV adds one prompt per data row. The header names the columns: title, a
// prompt/content/text column and optionally tags and project. Rows missing a title or a
// body are skipped. Unknown projects are created as needed. db is left untouched on error.
func ImportCSV(db *store.DB, r io.Reader, now time.Time) (Result, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, ImportFormatError{Kind: "csv", Err: errors.New("file is empty")}
	}
	if err != nil {
		return Result{}, ImportFormatError{Kind: "csv", Err: err}
	}
	cols, err := detectColumns(header)
	if err != nil {
		return Result{}, ImportFormatError{Kind: "csv", Err: err}
	}

	work := db.Clone()
	var res Result
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, ImportFormatError{Kind: "csv", Err: err}
		}
		title, body := cell(rec, cols.title), cell(rec, cols.body)
		if title == "" || body == "" {
			res.RowsSkipped++
			continue
		}
		projectID, created, err := resolveProject(work, cell(rec, cols.project))
		if err != nil {
			var ve mutate.ValidationError
			if errors.As(err, &ve) {
				res.RowsSkipped++
				continue
			}
			return Result{}, err
		}
		if created != "" {
			res.ProjectsAdded++
			res.CreatedProject = append(res.CreatedProject, created)
		}
		_, err = mutate.CreatePrompt(work, mutate.PromptInput{
			Title:     title,
			Prompt:    body,
			Tags:      splitCSVTags(cell(rec, cols.tags)),
			ProjectID: projectID,
		}, mutate.CreateOptions{AcceptDuplicates: true}, now)
		if err != nil {
			var ve mutate.ValidationError
			if errors.As(err, &ve) {
				res.RowsSkipped++
				continue
			}
			return Result{}, err
		}
		res.PromptsAdded++
	}
	*db = *work
	return res, nil
}

// resolveProject maps a project cell (an id or a name) to a project id, creating the
// project when nothing matches. It returns the created name, if any.
func resolveProject(db *store.DB, ref string) (string, string, error) {
	if ref == "" {
		return model.ProjectGeneral, "", nil
	}
	if db.ProjectExists(ref) {
		return ref, "", nil
	}
	if p, ok := db.FindProjectByName(ref); ok {
		return p.ID, "", nil
	}
	res, err := mutate.CreateProject(db, mutate.ProjectInput{Name: ref}, true)
	if err != nil {
		return "", "", err
	}
	return res.Project.ID, res.Project.Name, nil
}
