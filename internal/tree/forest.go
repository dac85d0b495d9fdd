package tree

import (
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

// Node is one project in the display forest. Children keep sequence order.
type Node struct {
	Project  model.Project
	Children []*Node
}

// BuildForest turns the flat, ordered project list into a forest. Siblings follow their
// position in projects. A project whose parent does not exist is treated as a root, and a
// project only reachable through a parent cycle is surfaced as a root at its position.
func BuildForest(projects []model.Project) []*Node {
	present := make(map[string]bool, len(projects))
	for _, p := range projects {
		present[p.ID] = true
	}

	children := map[string][]int{}
	var roots []int
	for i, p := range projects {
		pid := strings.TrimSpace(p.Parent())
		if pid == "" || !present[pid] || pid == p.ID {
			roots = append(roots, i)
			continue
		}
		children[pid] = append(children[pid], i)
	}

	visited := make(map[string]bool, len(projects))
	var build func(i int) *Node
	build = func(i int) *Node {
		p := projects[i]
		visited[p.ID] = true
		n := &Node{Project: p}
		for _, ci := range children[p.ID] {
			if visited[projects[ci].ID] {
				continue
			}
			n.Children = append(n.Children, build(ci))
		}
		return n
	}

	var out []*Node
	for _, i := range roots {
		if visited[projects[i].ID] {
			continue
		}
		out = append(out, build(i))
	}
	for i, p := range projects {
		if !visited[p.ID] {
			out = append(out, build(i))
		}
	}
	return out
}

// Walk visits every node depth-first in display order.
func Walk(forest []*Node, fn func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(forest, 0)
}

// IsDescendant reports whether candidateID sits somewhere below ancestorID.
// A project is never its own descendant, and nothing descends from "".
func IsDescendant(projects []model.Project, candidateID, ancestorID string) bool {
	if candidateID == "" || ancestorID == "" {
		return false
	}
	parentOf := make(map[string]string, len(projects))
	for _, p := range projects {
		parentOf[p.ID] = p.Parent()
	}
	seen := map[string]bool{candidateID: true}
	cur := parentOf[candidateID]
	for cur != "" && !seen[cur] {
		if cur == ancestorID {
			return true
		}
		seen[cur] = true
		cur = parentOf[cur]
	}
	return false
}

// Ancestors returns the parent chain of id, nearest first.
func Ancestors(projects []model.Project, id string) []string {
	parentOf := make(map[string]string, len(projects))
	for _, p := range projects {
		parentOf[p.ID] = p.Parent()
	}
	var out []string
	seen := map[string]bool{id: true}
	for cur := parentOf[id]; cur != "" && !seen[cur]; cur = parentOf[cur] {
		if _, ok := parentOf[cur]; !ok {
			break
		}
		seen[cur] = true
		out = append(out, cur)
	}
	return out
}

// Subtree returns id followed by every descendant id.
func Subtree(projects []model.Project, id string) []string {
	out := []string{id}
	for _, p := range projects {
		if p.ID != id && IsDescendant(projects, p.ID, id) {
			out = append(out, p.ID)
		}
	}
	return out
}
