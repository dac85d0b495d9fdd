package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const backupsDirName = "backups"

// WriteBackup snapshots db as a JSON document under <dir>/backups and returns its path.
func (s Store) WriteBackup(db *DB, now time.Time) (string, error) {
	if db == nil {
		return "", fmt.Errorf("backup: nil db")
	}
	b, err := json.MarshalIndent(db.values(), "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, backupsDirName, now.UTC().Format("20060102T150405.000Z")+".json")
	if err := writeFileAtomic(path, b); err != nil {
		return "", err
	}
	return path, nil
}

// ListBackups returns backup file paths, newest first.
func (s Store) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Dir, backupsDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, filepath.Join(s.Dir, backupsDirName, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

// ReadBackup loads a backup written by WriteBackup.
func ReadBackup(path string) (*DB, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("read backup %s: %w", filepath.Base(path), err)
	}
	db := Empty()
	for k, v := range raw {
		if err := db.assign(k, v); err != nil {
			return nil, fmt.Errorf("read backup %s: %s: %w", filepath.Base(path), k, err)
		}
	}
	db.normalize()
	return db, nil
}
