package session

import (
	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/mutate"
)

func (s *Session) SaveTemplate(promptID, name string) (model.Template, error) {
	tpl, err := mutate.SaveTemplate(s.db, promptID, name, s.now())
	if err != nil {
		return model.Template{}, s.fail("template.save", err, "prompt_id", promptID)
	}
	return *tpl, s.commit("template.save", "template_id", tpl.ID)
}

func (s *Session) UseTemplate(templateID, title, projectID string, accept bool) (model.Prompt, error) {
	res, err := mutate.PromptFromTemplate(s.db, templateID, title, projectID, s.createOptions(accept), s.now())
	if err != nil {
		return model.Prompt{}, s.fail("template.use", err, "template_id", templateID)
	}
	return *res.Prompt, s.commit("template.use", "template_id", templateID, "prompt_id", res.Prompt.ID)
}

func (s *Session) DeleteTemplate(templateID string) error {
	if err := mutate.DeleteTemplate(s.db, templateID); err != nil {
		return s.fail("template.delete", err, "template_id", templateID)
	}
	return s.commit("template.delete", "template_id", templateID)
}

func (s *Session) SetSortBy(key string) (model.SortKey, error) {
	k, err := mutate.SetSortBy(s.db, key)
	if err != nil {
		return k, s.fail("settings.sort", err)
	}
	return k, s.commit("settings.sort", "sort_by", string(k))
}

func (s *Session) CycleSortBy() (model.SortKey, error) {
	k := mutate.CycleSortBy(s.db)
	return k, s.commit("settings.sort", "sort_by", string(k))
}

func (s *Session) SetDarkMode(on bool) error {
	mutate.SetDarkMode(s.db, on)
	return s.commit("settings.dark_mode", "dark_mode", on)
}

func (s *Session) SetPro(on bool) error {
	mutate.SetPro(s.db, on)
	return s.commit("settings.pro", "pro", on)
}

// CompleteOnboarding clears the first-run flag. It saves only when the flag was set.
func (s *Session) CompleteOnboarding() error {
	if !mutate.CompleteOnboarding(s.db) {
		return nil
	}
	return s.commit("settings.onboarding")
}
