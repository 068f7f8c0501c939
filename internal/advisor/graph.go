package advisor

import (
	"fmt"
	"sort"

	"pathfinder-backend/internal/shared/apperr"
)

// Style hints by depth from the root.
const (
	HintStart     = "start"
	HintCourse    = "course"
	HintMilestone = "milestone"
	HintCareer    = "career"
)

var hintColors = map[string]string{
	HintStart:     "green",
	HintCourse:    "blue",
	HintMilestone: "orange",
	HintCareer:    "red",
}

// ValidateRoadmap checks that node ids are present and unique, that every edge
// references existing nodes, and that the graph has no cycles. Nodes may have
// several parents.
func ValidateRoadmap(r Roadmap) error {
	var problems []string
	ids := make(map[string]struct{}, len(r.Nodes))
	for i, n := range r.Nodes {
		if n.ID == "" {
			problems = append(problems, fmt.Sprintf("node %d has no id", i))
			continue
		}
		if _, dup := ids[n.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
			continue
		}
		ids[n.ID] = struct{}{}
	}
	for i, e := range r.Edges {
		if _, ok := ids[e.Source]; !ok {
			problems = append(problems, fmt.Sprintf("edge %d source %q is not a node", i, e.Source))
		}
		if _, ok := ids[e.Target]; !ok {
			problems = append(problems, fmt.Sprintf("edge %d target %q is not a node", i, e.Target))
		}
	}
	if len(problems) == 0 && hasCycle(r) {
		problems = append(problems, "graph contains a cycle")
	}
	if len(problems) > 0 {
		return &apperr.InvalidRoadmapError{Problems: problems}
	}
	return nil
}

// hasCycle runs Kahn's algorithm; edges must already reference known nodes.
func hasCycle(r Roadmap) bool {
	indegree := make(map[string]int, len(r.Nodes))
	children := make(map[string][]string, len(r.Nodes))
	for _, n := range r.Nodes {
		indegree[n.ID] = 0
	}
	for _, e := range r.Edges {
		indegree[e.Target]++
		children[e.Source] = append(children[e.Source], e.Target)
	}
	queue := make([]string, 0, len(indegree))
	for id, d := range indegree {
		if d == 0 {
			queue = append(queue, id)
		}
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, child := range children[id] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return visited != len(indegree)
}

// ProjectedNode is a node ready for rendering.
type ProjectedNode struct {
	Node
	Depth int    `json:"depth"`
	Color string `json:"color"`
}

// GraphStats summarizes a projected roadmap.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
	Roots int `json:"roots"`
	Depth int `json:"depth"`
}

// Projection is the presentation model of a roadmap.
type Projection struct {
	Nodes []ProjectedNode `json:"nodes"`
	Edges []Edge          `json:"edges"`
	Stats GraphStats      `json:"stats"`
}

// Project assigns each node its depth from the nearest root, fills missing style
// hints from that depth and resolves a display color. The roadmap must be valid.
func Project(r Roadmap) Projection {
	depth := depths(r)

	out := Projection{
		Nodes: make([]ProjectedNode, 0, len(r.Nodes)),
		Edges: append([]Edge{}, r.Edges...),
	}
	roots := 0
	maxDepth := 0
	for _, n := range r.Nodes {
		d := depth[n.ID]
		if d == 0 {
			roots++
		}
		if d > maxDepth {
			maxDepth = d
		}
		if n.StyleHint == "" {
			n.StyleHint = hintForDepth(d)
		}
		out.Nodes = append(out.Nodes, ProjectedNode{
			Node:  n,
			Depth: d,
			Color: colorFor(n),
		})
	}
	levels := 0
	if len(r.Nodes) > 0 {
		levels = maxDepth + 1
	}
	out.Stats = GraphStats{
		Nodes: len(r.Nodes),
		Edges: len(r.Edges),
		Roots: roots,
		Depth: levels,
	}
	return out
}

func depths(r Roadmap) map[string]int {
	hasParent := make(map[string]bool, len(r.Nodes))
	children := make(map[string][]string, len(r.Nodes))
	for _, e := range r.Edges {
		hasParent[e.Target] = true
		children[e.Source] = append(children[e.Source], e.Target)
	}
	depth := make(map[string]int, len(r.Nodes))
	var queue []string
	for _, n := range r.Nodes {
		if !hasParent[n.ID] {
			depth[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		kids := children[id]
		sort.Strings(kids)
		for _, child := range kids {
			if _, seen := depth[child]; seen {
				continue
			}
			depth[child] = depth[id] + 1
			queue = append(queue, child)
		}
	}
	return depth
}

func hintForDepth(d int) string {
	switch {
	case d <= 0:
		return HintStart
	case d == 1:
		return HintCourse
	case d == 2:
		return HintMilestone
	default:
		return HintCareer
	}
}

func colorFor(n Node) string {
	for _, key := range []string{"background", "backgroundColor"} {
		if v, ok := n.Style[key].(string); ok && v != "" {
			return v
		}
	}
	return hintColors[n.StyleHint]
}
