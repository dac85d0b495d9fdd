// Package docs holds the help topics shown by `pastemyprompt docs`.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

func Topics() []string {
	entries, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return []string{}
	}
	topics := make([]string, 0, len(entries))
	for _, p := range entries {
		if topic := strings.TrimSuffix(path.Base(p), ".md"); topic != "" {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// Get returns the markdown for topic. Lookup ignores case and surrounding space.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, `/\`) {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Summary is the first heading of topic, without the leading #.
func Summary(topic string) string {
	body, ok := Get(topic)
	if !ok {
		return ""
	}
	for _, ln := range strings.Split(body, "\n") {
		if ln = strings.TrimSpace(ln); strings.HasPrefix(ln, "#") {
			return strings.TrimSpace(strings.TrimLeft(ln, "#"))
		}
	}
	return ""
}
