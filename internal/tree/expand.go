package tree

// ExpandState maps project id to expanded. Absent ids are expanded.
type ExpandState map[string]bool

func (e ExpandState) IsExpanded(id string) bool {
	v, ok := e[id]
	return !ok || v
}

func (e ExpandState) Set(id string, expanded bool) {
	e[id] = expanded
}

// Toggle flips id and returns the new value.
func (e ExpandState) Toggle(id string) bool {
	v := !e.IsExpanded(id)
	e[id] = v
	return v
}

// Prune drops entries for ids that no longer exist.
func (e ExpandState) Prune(forest []*Node) {
	live := map[string]bool{}
	Walk(forest, func(n *Node, _ int) { live[n.Project.ID] = true })
	for id := range e {
		if !live[id] {
			delete(e, id)
		}
	}
}

// Row is one visible line of the project tree.
type Row struct {
	Node        *Node
	Depth       int
	HasChildren bool
	Expanded    bool
}

// Flatten lists visible rows: children of collapsed nodes are skipped.
func Flatten(forest []*Node, expand ExpandState) []Row {
	var out []Row
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			exp := expand.IsExpanded(n.Project.ID)
			out = append(out, Row{
				Node:        n,
				Depth:       depth,
				HasChildren: len(n.Children) > 0,
				Expanded:    exp,
			})
			if exp {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(forest, 0)
	return out
}
