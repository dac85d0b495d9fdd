package mutate

import (
	"strings"
	"time"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// SaveTemplate stores a copy of a prompt as a reusable template. name defaults to the
// prompt title.
func SaveTemplate(db *store.DB, promptID, name string, now time.Time) (*model.Template, error) {
	p, ok := db.FindPrompt(promptID)
	if !ok {
		return nil, NotFoundError{Kind: "prompt", ID: promptID}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = p.Title
	}
	for _, t := range db.Templates {
		if strings.EqualFold(t.Name, name) {
			return nil, ValidationError{Field: "name", Message: "a template named " + t.Name + " already exists"}
		}
	}
	id, err := store.NewID(db, store.TemplateIDPrefix)
	if err != nil {
		return nil, err
	}
	db.Templates = append(db.Templates, model.Template{
		ID:        id,
		Name:      name,
		Title:     p.Title,
		Prompt:    p.Prompt,
		Tags:      append([]string{}, p.Tags...),
		ProjectID: p.ProjectID,
		CreatedAt: now.UnixMilli(),
	})
	return &db.Templates[len(db.Templates)-1], nil
}

// PromptFromTemplate creates a prompt from a template, optionally overriding title and
// project. It goes through the same duplicate gate as CreatePrompt.
func PromptFromTemplate(db *store.DB, templateID string, title, projectID string, opts CreateOptions, now time.Time) (PromptResult, error) {
	t, ok := db.FindTemplate(templateID)
	if !ok {
		return PromptResult{}, NotFoundError{Kind: "template", ID: templateID}
	}
	in := PromptInput{Title: t.Title, Prompt: t.Prompt, Tags: append([]string{}, t.Tags...), ProjectID: t.ProjectID}
	if strings.TrimSpace(title) != "" {
		in.Title = title
	}
	switch {
	case strings.TrimSpace(projectID) != "":
		in.ProjectID = projectID
	case !db.ProjectExists(in.ProjectID):
		in.ProjectID = model.ProjectGeneral
	}
	return CreatePrompt(db, in, opts, now)
}

func DeleteTemplate(db *store.DB, templateID string) error {
	for i := range db.Templates {
		if db.Templates[i].ID == templateID {
			db.Templates = append(db.Templates[:i], db.Templates[i+1:]...)
			return nil
		}
	}
	return NotFoundError{Kind: "template", ID: templateID}
}
