package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tree"
)

// Edge kinds.
const (
	EdgeChild       = "child"
	EdgeConvergence = "convergence"
)

type graph struct {
	Category string `json:"category"`
	Root     string `json:"root,omitempty"`
	Nodes    []node `json:"nodes"`
	Edges    []edge `json:"edges"`
}

type node struct {
	ID      string       `json:"id"`
	Name    string       `json:"name,omitempty"`
	Tier    item.Tier    `json:"tier"`
	Theme   string       `json:"theme,omitempty"`
	Section tree.Section `json:"section,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// WriteTree encodes t as JSON and writes it to w. Child edges come first,
// in child order, followed by convergence edges.
func WriteTree(t *tree.Tree, w io.Writer) error {
	out := graph{Category: t.Category, Root: t.Root(), Nodes: make([]node, 0, t.Len())}
	var conv []edge
	for _, n := range t.Nodes() {
		out.Nodes = append(out.Nodes, node{ID: n.ID, Name: n.Name, Tier: n.Tier, Theme: n.Theme, Section: n.Section})
		for _, c := range n.Children {
			out.Edges = append(out.Edges, edge{From: n.ID, To: c, Kind: EdgeChild})
		}
		for _, p := range n.Convergence() {
			conv = append(conv, edge{From: p, To: n.ID, Kind: EdgeConvergence})
		}
	}
	out.Edges = append(out.Edges, conv...)
	if out.Edges == nil {
		out.Edges = []edge{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTree writes t to a JSON file at path.
func ExportTree(t *tree.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTree(t, f)
}

// ReadTree decodes a JSON tree from r. Errors name the node or edge that
// caused them; structural errors wrap the tree package sentinels.
func ReadTree(r io.Reader) (*tree.Tree, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := tree.New(data.Category)
	for _, n := range data.Nodes {
		nd := tree.Node{ID: n.ID, Name: n.Name, Tier: n.Tier, Theme: n.Theme, Section: n.Section}
		if err := t.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	if data.Root != "" {
		if err := t.SetRoot(data.Root); err != nil {
			return nil, fmt.Errorf("root %s: %w", data.Root, err)
		}
	}
	parented := make(map[string]bool)
	for _, e := range data.Edges {
		if e.Kind != EdgeChild {
			continue
		}
		if parented[e.To] {
			return nil, fmt.Errorf("edge %s->%s: %s already has a parent", e.From, e.To, e.To)
		}
		if err := t.Link(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		parented[e.To] = true
	}
	for _, e := range data.Edges {
		switch e.Kind {
		case EdgeChild:
		case EdgeConvergence:
			if err := t.AddPrereq(e.To, e.From); err != nil {
				return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
			}
		default:
			return nil, fmt.Errorf("edge %s->%s: unknown kind %q", e.From, e.To, e.Kind)
		}
	}
	return t, nil
}

// ImportTree reads a JSON tree file.
func ImportTree(path string) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}
