package model

import "strings"

// Built-in project ids. These always exist and are locked.
const (
	ProjectGeneral = "general"
	ProjectBlogs   = "blogs"
	ProjectX       = "x"
)

const (
	MaxRecent  = 3
	MaxHistory = 10
)

type Project struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	ParentID    *string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
	Icon        string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Locked      bool    `json:"locked,omitempty" yaml:"locked,omitempty"`
}

// Parent returns the parent id, or "" for a top-level project.
func (p Project) Parent() string {
	if p.ParentID == nil {
		return ""
	}
	return *p.ParentID
}

// Prompt timestamps are unix milliseconds; 0 means never.
type Prompt struct {
	ID        string   `json:"id" yaml:"id"`
	ProjectID string   `json:"projectId" yaml:"projectId"`
	Title     string   `json:"title" yaml:"title"`
	Prompt    string   `json:"prompt" yaml:"prompt"`
	Tags      []string `json:"tags" yaml:"tags"`
	LastUsed  int64    `json:"lastUsed" yaml:"lastUsed"`
	CopyCount int      `json:"copyCount" yaml:"copyCount"`
	CreatedAt int64    `json:"createdAt" yaml:"createdAt"`
	Version   int      `json:"version" yaml:"version"`
}

// HasTag reports whether the prompt carries tag, compared case-insensitively.
func (p Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HistoryEntry is a snapshot of a prompt taken right before an edit.
type HistoryEntry struct {
	Title     string   `json:"title" yaml:"title"`
	Prompt    string   `json:"prompt" yaml:"prompt"`
	Tags      []string `json:"tags" yaml:"tags"`
	ProjectID string   `json:"projectId" yaml:"projectId"`
	Timestamp int64    `json:"timestamp" yaml:"timestamp"`
}

type Template struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Title     string   `json:"title" yaml:"title"`
	Prompt    string   `json:"prompt" yaml:"prompt"`
	Tags      []string `json:"tags" yaml:"tags"`
	ProjectID string   `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	CreatedAt int64    `json:"createdAt" yaml:"createdAt"`
}

// SortKey selects the visible-list ordering.
type SortKey string

const (
	SortLastUsed  SortKey = "lastUsed"
	SortCopyCount SortKey = "copyCount"
	SortTitle     SortKey = "title"
	SortCreated   SortKey = "createdAt"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lastused", "last-used", "recent":
		return SortLastUsed, true
	case "copycount", "copy-count", "copies", "count":
		return SortCopyCount, true
	case "title", "name":
		return SortTitle, true
	case "createdat", "created", "created-at":
		return SortCreated, true
	default:
		return SortLastUsed, false
	}
}

// SortKeys lists the sort keys in cycling order.
func SortKeys() []SortKey {
	return []SortKey{SortLastUsed, SortCopyCount, SortTitle, SortCreated}
}

// StrPtr returns a pointer to s, or nil for "".
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
