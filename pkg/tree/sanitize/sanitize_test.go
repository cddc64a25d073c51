package sanitize

import (
	"fmt"
	"testing"

	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tree"
)

func build(t *testing.T, nodes []tree.Node, edges [][2]string) *tree.Tree {
	t.Helper()
	tr := tree.New("test")
	for _, n := range nodes {
		if err := tr.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.SetRoot(nodes[0].ID); err != nil {
		t.Fatal(err)
	}
	for _, e := range edges {
		if err := tr.Link(e[0], e[1]); err != nil {
			t.Fatalf("Link(%s, %s) error = %v", e[0], e[1], err)
		}
	}
	return tr
}

// star returns a root with n tier-1 children; theme(i) names child i's theme.
func star(t *testing.T, n int, theme func(i int) string) *tree.Tree {
	t.Helper()
	nodes := []tree.Node{{ID: "root", Tier: item.TierNovice}}
	var edges [][2]string
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("n%d", i)
		nodes = append(nodes, tree.Node{ID: id, Tier: item.TierApprentice, Theme: theme(i)})
		edges = append(edges, [2]string{"root", id})
	}
	return build(t, nodes, edges)
}

func TestSanitizeRescuesOrphans(t *testing.T) {
	tr := build(t, []tree.Node{
		{ID: "root", Tier: 0, Theme: "fire"},
		{ID: "a", Tier: 1, Theme: "fire"},
		{ID: "b", Tier: 1, Theme: "frost"},
		{ID: "c", Tier: 2, Theme: "fire"},
	}, [][2]string{{"root", "a"}})

	r := Sanitize(tr, Options{})
	if r.Rescued != 2 {
		t.Errorf("Rescued = %d, want 2", r.Rescued)
	}
	if got := tr.Unreachable(); len(got) != 0 {
		t.Errorf("Unreachable() = %v, want none", got)
	}
	if got := tr.Node("c").Parent; got != "a" {
		t.Errorf("c parent = %q, want a", got)
	}
	if got := tr.Node("b").Parent; got != "a" {
		t.Errorf("b parent = %q, want a", got)
	}
	if issues := tree.Validate(tr, DefaultMaxChildren); len(issues) != 0 {
		t.Errorf("Validate() = %v", issues)
	}
}

func TestSanitizeAvoidsHigherTierParent(t *testing.T) {
	tr := build(t, []tree.Node{
		{ID: "root", Tier: 0},
		{ID: "high", Tier: 4, Theme: "fire"},
		{ID: "low", Tier: 1, Theme: "fire"},
	}, [][2]string{{"root", "high"}})

	Sanitize(tr, Options{})
	if got := tr.Node("low").Parent; got != "root" {
		t.Errorf("low parent = %q, want root", got)
	}
}

func TestSanitizeRescuesSubtreeTop(t *testing.T) {
	tr := build(t, []tree.Node{
		{ID: "root", Tier: 0},
		{ID: "a", Tier: 1},
		{ID: "b", Tier: 2},
	}, nil)
	if err := tr.Link("a", "b"); err != nil {
		t.Fatal(err)
	}

	r := Sanitize(tr, Options{})
	if r.Rescued != 1 {
		t.Errorf("Rescued = %d, want 1", r.Rescued)
	}
	if tr.Node("b").Parent != "a" || tr.Node("b").Depth != 2 {
		t.Errorf("b = %+v, want under a at depth 2", tr.Node("b"))
	}
}

func TestSanitizeGroupsByTheme(t *testing.T) {
	tr := star(t, 8, func(i int) string {
		if i <= 4 {
			return "fire"
		}
		return "frost"
	})

	r := Sanitize(tr, Options{})
	if r.Reparented != 6 {
		t.Errorf("Reparented = %d, want 6", r.Reparented)
	}
	if got := tr.Node("root").Children; len(got) != 2 || got[0] != "n1" || got[1] != "n5" {
		t.Errorf("root children = %v, want [n1 n5]", got)
	}
	for _, n := range tr.Nodes() {
		if len(n.Prereqs) == 0 && !n.IsRoot {
			t.Errorf("%s lost its prerequisites", n.ID)
		}
	}
	if issues := tree.Validate(tr, DefaultMaxChildren); len(issues) != 0 {
		t.Errorf("Validate() = %v", issues)
	}
}

func TestSanitizeMergesSmallGroups(t *testing.T) {
	tr := star(t, 7, func(i int) string { return fmt.Sprintf("t%d", i) })

	r := Sanitize(tr, Options{})
	if got := len(tr.Node("root").Children); got != 5 {
		t.Errorf("root children = %d, want 5", got)
	}
	if r.Reparented != 2 {
		t.Errorf("Reparented = %d, want 2", r.Reparented)
	}
	if tr.Node("n1").Parent != "n2" || tr.Node("n3").Parent != "n4" {
		t.Errorf("n1 under %q, n3 under %q; want n2, n4", tr.Node("n1").Parent, tr.Node("n3").Parent)
	}
}

func TestSanitizeIterationLimit(t *testing.T) {
	tests := []struct {
		name          string
		maxIterations int
		wantLimit     bool
		wantIter      int
	}{
		{"converges", 0, false, 3},
		{"capped", 1, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := star(t, 8, func(int) string { return "fire" })
			r := Sanitize(tr, Options{MaxIterations: tt.maxIterations})
			if r.LimitReached != tt.wantLimit {
				t.Errorf("LimitReached = %v, want %v", r.LimitReached, tt.wantLimit)
			}
			if r.Iterations != tt.wantIter {
				t.Errorf("Iterations = %d, want %d", r.Iterations, tt.wantIter)
			}
			if got := tr.Unreachable(); len(got) != 0 {
				t.Errorf("Unreachable() = %v", got)
			}
		})
	}
}

func TestSanitizeNoRoot(t *testing.T) {
	tr := tree.New("empty")
	_ = tr.AddNode(tree.Node{ID: "a"})
	if r := Sanitize(tr, Options{}); r != (Report{}) {
		t.Errorf("Sanitize() = %+v, want zero report", r)
	}
}
