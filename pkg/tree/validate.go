package tree

import (
	"fmt"
	"slices"
)

// IssueKind classifies a structural problem found by [Validate].
type IssueKind string

// Issue kinds.
const (
	IssueNoRoot        IssueKind = "no_root"
	IssueRootHasPrereq IssueKind = "root_has_prerequisites"
	IssueDangling      IssueKind = "dangling_reference"
	IssueCycle         IssueKind = "cycle"
	IssueUnreachable   IssueKind = "unreachable"
	IssueLocked        IssueKind = "locked"
	IssueOrphan        IssueKind = "orphan"
	IssueOverCapacity  IssueKind = "over_capacity"
	IssueInconsistent  IssueKind = "inconsistent_parent"
)

// Issue is one structural problem.
type Issue struct {
	Kind   IssueKind `json:"kind" bson:"kind"`
	Node   string    `json:"node,omitempty" bson:"node,omitempty"`
	Detail string    `json:"detail" bson:"detail"`
}

func (i Issue) String() string {
	if i.Node == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", i.Kind, i.Node, i.Detail)
}

// Validate checks the tree invariants and returns every violation found.
// A maxChildren of zero or less disables the fan-out check.
func Validate(t *Tree, maxChildren int) []Issue {
	var issues []Issue
	add := func(kind IssueKind, node, format string, args ...any) {
		issues = append(issues, Issue{Kind: kind, Node: node, Detail: fmt.Sprintf(format, args...)})
	}

	root := t.Node(t.Root())
	if root == nil {
		add(IssueNoRoot, "", "tree %q has no root", t.Category)
		return issues
	}
	if len(root.Prereqs) > 0 {
		add(IssueRootHasPrereq, root.ID, "root has %d prerequisites", len(root.Prereqs))
	}

	for _, n := range t.Nodes() {
		for _, c := range n.Children {
			cn := t.Node(c)
			if cn == nil {
				add(IssueDangling, n.ID, "child %q does not exist", c)
				continue
			}
			if cn.Parent != n.ID {
				add(IssueInconsistent, c, "listed as child of %q but parent is %q", n.ID, cn.Parent)
			}
		}
		for _, p := range n.Prereqs {
			if !t.Has(p) {
				add(IssueDangling, n.ID, "prerequisite %q does not exist", p)
			}
		}
		if n.Parent != "" && !slices.Contains(n.Prereqs, n.Parent) {
			add(IssueInconsistent, n.ID, "parent %q missing from prerequisites", n.Parent)
		}
		if !n.IsRoot && len(n.Prereqs) == 0 {
			add(IssueOrphan, n.ID, "no prerequisites")
		}
		if maxChildren > 0 && len(n.Children) > maxChildren {
			add(IssueOverCapacity, n.ID, "%d children exceeds cap %d", len(n.Children), maxChildren)
		}
	}

	for _, edge := range findCycles(t) {
		add(IssueCycle, edge[0], "prerequisite edge %s -> %s closes a cycle", edge[1], edge[0])
	}

	reach := t.Reachable()
	unlocked := t.SimulateUnlocks()
	for _, id := range t.IDs() {
		if !reach[id] {
			add(IssueUnreachable, id, "not reachable from root %q", root.ID)
		}
		if !unlocked[id] {
			add(IssueLocked, id, "can never be unlocked")
		}
	}
	return issues
}

// HasCycle reports whether any prerequisite chain loops back on itself.
func HasCycle(t *Tree) bool {
	return len(findCycles(t)) > 0
}

// findCycles runs an iterative white/gray/black DFS over prerequisite edges
// (node -> prerequisite) and returns the back edges as [node, prereq].
func findCycles(t *Tree) [][2]string {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	var back [][2]string

	type frame struct {
		id  string
		pos int
	}
	for _, start := range t.IDs() {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			n := t.Node(top.id)
			if n == nil || top.pos >= len(n.Prereqs) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			next := n.Prereqs[top.pos]
			top.pos++
			if !t.Has(next) {
				continue
			}
			switch color[next] {
			case white:
				color[next] = gray
				stack = append(stack, frame{id: next})
			case gray:
				back = append(back, [2]string{top.id, next})
			}
		}
	}
	return back
}
