// Package transfer moves prompts in and out of the store: JSON backups, CSV sheets and
// plain text.
package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

// DefaultExportFileName is the file name offered for JSON backups.
const DefaultExportFileName = "prompthub-backup.json"

// Document is the export format.
type Document struct {
	Projects   []model.Project `json:"projects" yaml:"projects"`
	Prompts    []model.Prompt  `json:"prompts" yaml:"prompts"`
	Recent     []string        `json:"recent" yaml:"recent"`
	ExportedAt string          `json:"exportedAt" yaml:"exportedAt"`
}

func Export(db *store.DB, now time.Time) Document {
	c := db.Clone()
	return Document{
		Projects:   c.Projects,
		Prompts:    c.Prompts,
		Recent:     c.Recent,
		ExportedAt: now.UTC().Format(time.RFC3339Nano),
	}
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Write encodes doc as indented JSON or YAML.
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q (use json or yaml)", format)
	}
}
