// Package vars handles {{name}} placeholders inside prompt bodies.
package vars

import (
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Extract returns the variables in body in first-seen order, deduplicated by trimmed name.
func Extract(body string) []Variable {
	out := []Variable{}
	seen := map[string]bool{}
	for _, m := range tokenRe.FindAllStringSubmatch(body, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Variable{Name: name})
	}
	return out
}

// Names is Extract without the values.
func Names(body string) []string {
	vs := Extract(body)
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Name)
	}
	return out
}

// Render substitutes every {{name}} token. Names without a non-empty value become "[name]".
func Render(body string, values map[string]string) string {
	return tokenRe.ReplaceAllStringFunc(body, func(tok string) string {
		name := strings.TrimSpace(tok[2 : len(tok)-2])
		if name == "" {
			return tok
		}
		if v := values[name]; v != "" {
			return v
		}
		return "[" + name + "]"
	})
}

// ParseAssignments turns ["k=v", ...] into a map. Entries without "=" map to "".
func ParseAssignments(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, _ := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
