package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/skilltree/pkg/layout"
	"github.com/matzehuels/skilltree/pkg/tree"
)

func sample(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New("fire")
	for _, n := range []tree.Node{
		{ID: "flames", Theme: "flame"},
		{ID: "firebolt", Tier: 1, Theme: "bolt"},
		{ID: "fireball", Tier: 1, Theme: "flame"},
		{ID: "inferno", Tier: 2, Theme: "flame"},
	} {
		if err := tr.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	_ = tr.SetRoot("flames")
	for _, e := range [][2]string{{"flames", "firebolt"}, {"flames", "fireball"}, {"fireball", "inferno"}} {
		if err := tr.Link(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.AddPrereq("inferno", "firebolt"); err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestTreeDOT(t *testing.T) {
	dot := TreeDOT(sample(t), Options{Detailed: true})

	for _, want := range []string{
		`digraph "fire" {`,
		`"flames" -> "firebolt";`,
		`"fireball" -> "inferno";`,
		`"firebolt" -> "inferno" [style=dashed`,
		`penwidth=2.5`,
		`tier: 2`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("TreeDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, "style=dashed") != 1 {
		t.Errorf("TreeDOT() dashed edges = %d, want 1", strings.Count(dot, "style=dashed"))
	}
}

func TestTreeDOTThemeColors(t *testing.T) {
	dot := TreeDOT(sample(t), Options{})
	// themes sorted: bolt, flame
	if !strings.Contains(dot, `"firebolt" [label="firebolt", fillcolor="#fde2e4"]`) {
		t.Errorf("bolt theme color missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"fireball" [label="fireball", fillcolor="#dbe7ff"]`) {
		t.Errorf("flame theme color missing:\n%s", dot)
	}
}

func TestPlacementDOT(t *testing.T) {
	nodes := []layout.PlacedNode{
		{ID: "a", X: 0, Y: 0, IsRoot: true},
		{ID: "b", X: 10, Y: -5.5, ParentID: "a"},
	}
	dot := PlacementDOT("fire", nodes, Options{Scale: 1})
	for _, want := range []string{
		`layout=neato;`,
		`pos="0.00,0.00!"`,
		`pos="10.00,-5.50!"`,
		`"a" -> "b";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("PlacementDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if got := string(normalizeViewBox([]byte("<svg></svg>"))); got != "<svg></svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
