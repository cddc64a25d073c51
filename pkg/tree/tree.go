package tree

import (
	"errors"
	"slices"

	"github.com/matzehuels/skilltree/pkg/item"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the
	// same ID already exists.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned when an operation references a node that is
	// not in the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrSelfLink is returned when a node would become its own parent or
	// prerequisite.
	ErrSelfLink = errors.New("node cannot reference itself")

	// ErrRootLink is returned by [Tree.Link] when the root would get a parent.
	ErrRootLink = errors.New("root cannot have a parent")

	// ErrWouldCycle is returned when an edge would make a node transitively
	// require itself.
	ErrWouldCycle = errors.New("edge would create a cycle")
)

// Section is a coarse depth band used by growth-style renderers.
type Section string

// Sections from the root outwards.
const (
	SectionRoot   Section = "root"
	SectionTrunk  Section = "trunk"
	SectionBranch Section = "branch"
)

// Node is one item in the tree.
type Node struct {
	ID       string    `json:"id" bson:"id"`
	Name     string    `json:"name,omitempty" bson:"name,omitempty"`
	Tier     item.Tier `json:"tier" bson:"tier"`
	Theme    string    `json:"theme,omitempty" bson:"theme,omitempty"`
	Children []string  `json:"children,omitempty" bson:"children,omitempty"`
	Prereqs  []string  `json:"prerequisites,omitempty" bson:"prerequisites,omitempty"`
	Parent   string    `json:"parent,omitempty" bson:"parent,omitempty"`
	IsRoot   bool      `json:"is_root,omitempty" bson:"is_root,omitempty"`
	Depth    int       `json:"depth" bson:"depth"`
	Section  Section   `json:"section,omitempty" bson:"section,omitempty"`
}

// Convergence returns the prerequisites that are not the tree parent.
func (n *Node) Convergence() []string {
	var out []string
	for _, p := range n.Prereqs {
		if p != n.Parent {
			out = append(out, p)
		}
	}
	return out
}

// Tree is the prerequisite tree of one category.
//
// The zero value is not usable; create trees with [New].
type Tree struct {
	Category string

	root  string
	nodes map[string]*Node
	order []string
}

// New creates an empty tree for a category.
func New(category string) *Tree {
	return &Tree{
		Category: category,
		nodes:    make(map[string]*Node),
	}
}

// NewFromItems creates a tree with one unlinked node per item, in item order.
func NewFromItems(category string, items []item.Item) (*Tree, error) {
	t := New(category)
	for _, it := range items {
		if err := t.AddNode(Node{ID: it.ID, Name: it.Name, Tier: it.Tier}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddNode inserts a copy of n. Child, parent and prerequisite fields are
// ignored; use [Tree.Link] and [Tree.AddPrereq] to connect nodes.
func (t *Tree) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, ok := t.nodes[n.ID]; ok {
		return ErrDuplicateNodeID
	}
	n.Children, n.Prereqs, n.Parent, n.IsRoot = nil, nil, "", false
	t.nodes[n.ID] = &n
	t.order = append(t.order, n.ID)
	return nil
}

// Node returns the node with the given ID, or nil.
func (t *Tree) Node(id string) *Node { return t.nodes[id] }

// Has reports whether the tree contains id.
func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.order) }

// Root returns the root ID, or "" before [Tree.SetRoot].
func (t *Tree) Root() string { return t.root }

// IDs returns node IDs in insertion order.
func (t *Tree) IDs() []string { return slices.Clone(t.order) }

// Nodes returns nodes in insertion order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, len(t.order))
	for i, id := range t.order {
		out[i] = t.nodes[id]
	}
	return out
}

// SetRoot makes id the root. The previous root, if any, loses its flag.
// The new root is detached from its parent and drops all prerequisites.
func (t *Tree) SetRoot(id string) error {
	n := t.nodes[id]
	if n == nil {
		return ErrUnknownNode
	}
	if old := t.nodes[t.root]; old != nil {
		old.IsRoot = false
	}
	for _, p := range slices.Clone(n.Prereqs) {
		t.RemovePrereq(id, p)
	}
	n.IsRoot = true
	t.root = id
	t.RecomputeDepths()
	return nil
}

// Link makes parent the tree parent of child.
//
// If child already had a parent it is moved. The old parent is replaced in
// the prerequisite list, unless parent was already a prerequisite, in which
// case the old parent stays as a convergence prerequisite. Either way the
// prerequisite count never shrinks.
func (t *Tree) Link(parent, child string) error {
	p, c := t.nodes[parent], t.nodes[child]
	if p == nil || c == nil {
		return ErrUnknownNode
	}
	if parent == child {
		return ErrSelfLink
	}
	if child == t.root {
		return ErrRootLink
	}
	if c.Parent == parent {
		return nil
	}
	if t.Requires(parent, child) {
		return ErrWouldCycle
	}

	old := c.Parent
	if op := t.nodes[old]; op != nil {
		op.Children = remove(op.Children, child)
	}
	p.Children = append(p.Children, child)
	c.Parent = parent

	switch {
	case slices.Contains(c.Prereqs, parent):
	case old != "" && slices.Contains(c.Prereqs, old):
		c.Prereqs[slices.Index(c.Prereqs, old)] = parent
	default:
		c.Prereqs = append(c.Prereqs, parent)
	}

	t.updateDepths(child, p.Depth+1)
	return nil
}

// AddPrereq adds a convergence prerequisite. Existing prerequisites are a
// no-op. Child lists are not touched.
func (t *Tree) AddPrereq(id, prereq string) error {
	n, p := t.nodes[id], t.nodes[prereq]
	if n == nil || p == nil {
		return ErrUnknownNode
	}
	if id == prereq {
		return ErrSelfLink
	}
	if slices.Contains(n.Prereqs, prereq) {
		return nil
	}
	if t.Requires(prereq, id) {
		return ErrWouldCycle
	}
	n.Prereqs = append(n.Prereqs, prereq)
	return nil
}

// RemovePrereq removes prereq from id. If prereq is the tree parent the child
// edge is removed as well and the node becomes unparented.
func (t *Tree) RemovePrereq(id, prereq string) {
	n := t.nodes[id]
	if n == nil {
		return
	}
	n.Prereqs = remove(n.Prereqs, prereq)
	if n.Parent == prereq {
		if p := t.nodes[prereq]; p != nil {
			p.Children = remove(p.Children, id)
		}
		n.Parent = ""
	}
}

// Requires reports whether a transitively requires b through prerequisite
// edges. A node does not require itself unless it sits on a cycle.
func (t *Tree) Requires(a, b string) bool {
	start := t.nodes[a]
	if start == nil {
		return false
	}
	seen := map[string]bool{}
	queue := slices.Clone(start.Prereqs)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == b {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if n := t.nodes[id]; n != nil {
			queue = append(queue, n.Prereqs...)
		}
	}
	return false
}

// IsDescendant reports whether id lies in the child subtree of ancestor.
func (t *Tree) IsDescendant(ancestor, id string) bool {
	if ancestor == id {
		return false
	}
	return slices.Contains(t.Descendants(ancestor), id)
}

// Descendants returns the child subtree of id in breadth-first order,
// excluding id itself.
func (t *Tree) Descendants(id string) []string {
	n := t.nodes[id]
	if n == nil {
		return nil
	}
	seen := map[string]bool{id: true}
	var out []string
	queue := slices.Clone(n.Children)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		if c := t.nodes[cur]; c != nil {
			queue = append(queue, c.Children...)
		}
	}
	return out
}

// SubtreeSize returns the number of nodes in the child subtree of id,
// including id.
func (t *Tree) SubtreeSize(id string) int {
	if !t.Has(id) {
		return 0
	}
	return len(t.Descendants(id)) + 1
}

// Reachable returns the set of nodes reachable from the root through child
// edges, including the root.
func (t *Tree) Reachable() map[string]bool {
	seen := make(map[string]bool, len(t.nodes))
	if t.nodes[t.root] == nil {
		return seen
	}
	queue := []string{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		if n := t.nodes[id]; n != nil {
			queue = append(queue, n.Children...)
		}
	}
	return seen
}

// Unreachable returns nodes not reachable from the root, in insertion order.
func (t *Tree) Unreachable() []string {
	reach := t.Reachable()
	var out []string
	for _, id := range t.order {
		if !reach[id] {
			out = append(out, id)
		}
	}
	return out
}

// SimulateUnlocks replays the unlock order from the root. A node unlocks once
// every one of its prerequisites has unlocked; nodes without prerequisites
// (other than the root) and nodes with unknown prerequisites never unlock.
func (t *Tree) SimulateUnlocks() map[string]bool {
	unlocked := make(map[string]bool, len(t.nodes))
	if t.nodes[t.root] == nil {
		return unlocked
	}

	pending := make(map[string]int, len(t.nodes))
	dependents := make(map[string][]string)
	for _, id := range t.order {
		n := t.nodes[id]
		if id == t.root {
			continue
		}
		seen := map[string]bool{}
		for _, p := range n.Prereqs {
			if seen[p] {
				continue
			}
			seen[p] = true
			pending[id]++
			dependents[p] = append(dependents[p], id)
		}
	}

	queue := []string{t.root}
	unlocked[t.root] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range dependents[id] {
			pending[dep]--
			if pending[dep] == 0 && !unlocked[dep] {
				unlocked[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return unlocked
}

// RecomputeDepths sets every reachable node's depth to its child-edge
// distance from the root. Unreachable nodes keep their depth.
func (t *Tree) RecomputeDepths() {
	if t.nodes[t.root] == nil {
		return
	}
	t.updateDepths(t.root, 0)
}

func (t *Tree) updateDepths(id string, depth int) {
	type entry struct {
		id    string
		depth int
	}
	seen := map[string]bool{}
	queue := []entry{{id, depth}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if seen[e.id] {
			continue
		}
		seen[e.id] = true
		n := t.nodes[e.id]
		if n == nil {
			continue
		}
		n.Depth = e.depth
		for _, c := range n.Children {
			queue = append(queue, entry{c, e.depth + 1})
		}
	}
}

// MaxDepth returns the largest depth among reachable nodes.
func (t *Tree) MaxDepth() int {
	deepest := 0
	for id := range t.Reachable() {
		if d := t.nodes[id].Depth; d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Default section cutoffs as fractions of the maximum depth.
const (
	DefaultRootShare  = 0.2
	DefaultTrunkShare = 0.5
)

// AssignSections labels nodes by depth: the root band covers the first
// rootShare of the maximum depth, the trunk band the next trunkShare, and
// everything deeper is a branch.
func (t *Tree) AssignSections(rootShare, trunkShare float64) {
	maxDepth := t.MaxDepth()
	if maxDepth == 0 {
		for _, n := range t.nodes {
			n.Section = SectionRoot
		}
		return
	}
	rootCut := max(0, int(float64(maxDepth)*rootShare))
	trunkCut := max(rootCut+1, int(float64(maxDepth)*(rootShare+trunkShare)))
	for _, n := range t.nodes {
		switch {
		case n.IsRoot || n.Depth <= rootCut:
			n.Section = SectionRoot
		case n.Depth <= trunkCut:
			n.Section = SectionTrunk
		default:
			n.Section = SectionBranch
		}
	}
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		Category: t.Category,
		root:     t.root,
		nodes:    make(map[string]*Node, len(t.nodes)),
		order:    slices.Clone(t.order),
	}
	for id, n := range t.nodes {
		cp := *n
		cp.Children = slices.Clone(n.Children)
		cp.Prereqs = slices.Clone(n.Prereqs)
		c.nodes[id] = &cp
	}
	return c
}

func remove(s []string, v string) []string {
	return slices.DeleteFunc(s, func(x string) bool { return x == v })
}
