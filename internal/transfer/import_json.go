package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// ImportFormatError aborts an import. Nothing from the input is applied.
type ImportFormatError struct {
	Kind string
	Err  error
}

func (e ImportFormatError) Error() string {
	return fmt.Sprintf("invalid %s import: %v", e.Kind, e.Err)
}

func (e ImportFormatError) Unwrap() error { return e.Err }

type Result struct {
	ProjectsAdded  int      `json:"projectsAdded"`
	PromptsAdded   int      `json:"promptsAdded"`
	PromptsMerged  int      `json:"promptsMerged"`
	RowsSkipped    int      `json:"rowsSkipped"`
	CreatedProject []string `json:"createdProjects,omitempty"`
}

const documentSchema = `{
  "type": "object",
  "properties": {
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "parentId": {"type": ["string", "null"]},
          "locked": {"type": "boolean"}
        }
      }
    },
    "prompts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "projectId": {"type": "string"},
          "title": {"type": "string"},
          "prompt": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "lastUsed": {"type": "number", "minimum": 0},
          "copyCount": {"type": "integer", "minimum": 0},
          "createdAt": {"type": "number", "minimum": 0},
          "version": {"type": "integer", "minimum": 0}
        }
      }
    },
    "recent": {"type": "array", "items": {"type": "string"}},
    "exportedAt": {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("import.json", bytes.NewReader([]byte(documentSchema))); err != nil {
			schemaErr = fmt.Errorf("load import schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("import.json")
	})
	return schema, schemaErr
}

type rawDocument struct {
	Projects []model.Project  `json:"projects"`
	Prompts  []json.RawMessage `json:"prompts"`
	Recent   []string         `json:"recent"`
}

// ImportJSON merges an exported document into db. Projects with unknown ids are appended
// (a project whose name is already taken is mapped onto the existing one). Prompts with a
// known id are overwritten field by field; others are appended. Recent is the union of
// both lists, capped. db is left untouched on error.
func ImportJSON(db *store.DB, data []byte, now time.Time) (Result, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Result{}, ImportFormatError{Kind: "json", Err: err}
	}
	sch, err := compiledSchema()
	if err != nil {
		return Result{}, err
	}
	if err := sch.Validate(doc); err != nil {
		return Result{}, ImportFormatError{Kind: "json", Err: err}
	}
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, ImportFormatError{Kind: "json", Err: err}
	}

	work := db.Clone()
	var res Result

	projectAlias := map[string]string{}
	for _, p := range raw.Projects {
		if work.ProjectExists(p.ID) {
			continue
		}
		if existing, ok := work.FindProjectByName(p.Name); ok {
			projectAlias[p.ID] = existing.ID
			continue
		}
		p.Locked = false
		work.Projects = append(work.Projects, p)
		res.ProjectsAdded++
	}
	for i := range work.Projects {
		if alias, ok := projectAlias[work.Projects[i].Parent()]; ok {
			work.Projects[i].ParentID = model.StrPtr(alias)
		}
	}

	for _, msg := range raw.Prompts {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(msg, &head); err != nil {
			return Result{}, ImportFormatError{Kind: "json", Err: err}
		}
		if existing, ok := work.FindPrompt(head.ID); ok && head.ID != "" {
			if err := json.Unmarshal(msg, existing); err != nil {
				return Result{}, ImportFormatError{Kind: "json", Err: err}
			}
			if alias, ok := projectAlias[existing.ProjectID]; ok {
				existing.ProjectID = alias
			}
			res.PromptsMerged++
			continue
		}
		var p model.Prompt
		if err := json.Unmarshal(msg, &p); err != nil {
			return Result{}, ImportFormatError{Kind: "json", Err: err}
		}
		if strings.TrimSpace(p.ID) == "" {
			id, err := store.NewID(work, store.PromptIDPrefix)
			if err != nil {
				return Result{}, err
			}
			p.ID = id
		}
		if alias, ok := projectAlias[p.ProjectID]; ok {
			p.ProjectID = alias
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		work.Prompts = append(work.Prompts, p)
		res.PromptsAdded++
	}

	if raw.Recent != nil {
		work.Recent = mergeRecent(work.Recent, raw.Recent)
	}
	store.Migrate(work, now)
	*db = *work
	return res, nil
}

func mergeRecent(existing, imported []string) []string {
	out := make([]string, 0, model.MaxRecent)
	seen := map[string]bool{}
	for _, list := range [][]string{existing, imported} {
		for _, id := range list {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) > model.MaxRecent {
		out = out[:model.MaxRecent]
	}
	return out
}
