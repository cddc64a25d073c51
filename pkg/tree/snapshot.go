package tree

import (
	"cmp"
	"fmt"
	"slices"
)

// Snapshot is the serialized form of a [Tree]. Nodes are sorted by ID so
// equal trees encode to identical bytes.
type Snapshot struct {
	Category string `json:"category" bson:"category"`
	Root     string `json:"root" bson:"root"`
	Nodes    []Node `json:"nodes" bson:"nodes"`
}

// Snapshot copies the tree into its serialized form.
func (t *Tree) Snapshot() Snapshot {
	s := Snapshot{Category: t.Category, Root: t.root, Nodes: make([]Node, 0, len(t.nodes))}
	for _, n := range t.Nodes() {
		cp := *n
		cp.Children = slices.Clone(n.Children)
		cp.Prereqs = slices.Clone(n.Prereqs)
		s.Nodes = append(s.Nodes, cp)
	}
	slices.SortFunc(s.Nodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	return s
}

// FromSnapshot rebuilds a tree. Child order and prerequisite order are kept
// exactly as serialized.
func FromSnapshot(s Snapshot) (*Tree, error) {
	t := New(s.Category)
	for _, n := range s.Nodes {
		if err := t.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, n := range s.Nodes {
		dst := t.nodes[n.ID]
		dst.Children = slices.Clone(n.Children)
		dst.Prereqs = slices.Clone(n.Prereqs)
		dst.Parent = n.Parent
		dst.Depth = n.Depth
		dst.Section = n.Section
	}
	if s.Root != "" {
		root := t.nodes[s.Root]
		if root == nil {
			return nil, fmt.Errorf("root %q: %w", s.Root, ErrUnknownNode)
		}
		root.IsRoot = true
		t.root = s.Root
	}
	return t, nil
}
