package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

const (
	PromptIDPrefix   = "pr"
	ProjectIDPrefix  = "proj"
	TemplateIDPrefix = "tpl"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// NewID returns a fresh id with prefix that no prompt, project or template uses yet.
func NewID(db *DB, prefix string) (string, error) {
	for {
		id, err := newRandomID(prefix)
		if err != nil {
			return "", err
		}
		if !idExists(db, id) {
			return id, nil
		}
	}
}

func idExists(db *DB, id string) bool {
	if db == nil {
		return false
	}
	if _, ok := db.FindPrompt(id); ok {
		return true
	}
	if _, ok := db.FindProject(id); ok {
		return true
	}
	_, ok := db.FindTemplate(id)
	return ok
}
