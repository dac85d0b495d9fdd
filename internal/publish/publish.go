// Package publish writes prompts out as a folder of markdown pages.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/store"
	"github.com/AstralShardio/pastemyprompt/internal/tree"
)

type WriteOptions struct {
	IncludeArchived bool
	IncludeHistory  bool
	Overwrite       bool
	ProjectID       string
}

type WriteResult struct {
	Written []string `json:"written"`
}

func (o WriteOptions) render() RenderOptions {
	return RenderOptions{IncludeArchived: o.IncludeArchived, IncludeHistory: o.IncludeHistory, ProjectID: o.ProjectID}
}

func WritePrompt(db *store.DB, promptID string, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	promptID = strings.TrimSpace(promptID)
	if promptID == "" {
		return WriteResult{}, errors.New("missing prompt id")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}

	md, err := RenderPromptMarkdown(db, promptID, opt.render())
	if err != nil {
		return WriteResult{}, err
	}
	outDir := filepath.Join(filepath.Clean(toDir), "prompts")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	outPath := filepath.Join(outDir, promptID+".md")
	if err := writeFile(outPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

// WriteLibrary writes index.md and one page per prompt. With ProjectID set only that
// project and its sub-projects are written.
func WriteLibrary(db *store.DB, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	indexMD, err := RenderIndexMarkdown(db, opt.render())
	if err != nil {
		return WriteResult{}, err
	}
	promptsDir := filepath.Join(toDir, "prompts")
	if err := os.MkdirAll(promptsDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(indexMD), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	var scope map[string]bool
	if opt.ProjectID != "" {
		scope = map[string]bool{}
		for _, id := range tree.Subtree(db.Projects, opt.ProjectID) {
			scope[id] = true
		}
	}

	// Stops on the first error.
	written := []string{indexPath}
	for _, p := range db.Prompts {
		if scope != nil && !scope[p.ProjectID] {
			continue
		}
		if db.IsArchived(p.ID) && !opt.IncludeArchived {
			continue
		}
		md, err := RenderPromptMarkdown(db, p.ID, opt.render())
		if err != nil {
			return WriteResult{}, err
		}
		path := filepath.Join(promptsDir, p.ID+".md")
		if err := writeFile(path, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, path)
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
