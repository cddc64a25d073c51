package layout

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tree"
)

// fanTree builds an n-node tree where node i hangs off node (i-1)/fan and
// tiers grow with depth.
func fanTree(t *testing.T, n, fan int) *tree.Tree {
	t.Helper()
	tr := tree.New("gen")
	themes := []string{"fire", "frost", "shock"}
	for i := range n {
		depth := 0
		for j := i; j > 0; j = (j - 1) / fan {
			depth++
		}
		if err := tr.AddNode(tree.Node{
			ID:    fmt.Sprintf("n%03d", i),
			Tier:  item.Tier(min(depth, int(item.TierMaster))),
			Theme: themes[i%len(themes)],
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := tr.SetRoot("n000"); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < n; i++ {
		if err := tr.Link(fmt.Sprintf("n%03d", (i-1)/fan), fmt.Sprintf("n%03d", i)); err != nil {
			t.Fatal(err)
		}
	}
	return tr
}

// lattice returns cols*rows points spaced 10 apart with the origin at the
// bottom centre.
func lattice(cols, rows int) []grid.Point {
	var pts []grid.Point
	for y := range rows {
		for x := range cols {
			pts = append(pts, grid.Point{X: float64(x-cols/2) * 10, Y: float64(y) * 10})
		}
	}
	return pts
}

func run(t *testing.T, tr *tree.Tree, pts []grid.Point, settings Settings, seed uint64) (Placement, *grid.Graph) {
	t.Helper()
	g := grid.Build(pts, 0)
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	p := Layout(tr, g, Options{Settings: settings}, rng)
	return p, g
}

func TestLayoutSmall(t *testing.T) {
	tr := fanTree(t, 10, 3)
	p, _ := run(t, tr, lattice(9, 9), Settings{Spread: 50, RadialBias: 50}, 1)

	if len(p.Nodes) != 10 || len(p.Unplaced) != 0 {
		t.Fatalf("placed %d, unplaced %v, want 10 and none", len(p.Nodes), p.Unplaced)
	}
	if p.Forced != 0 {
		t.Errorf("Forced = %d, want 0", p.Forced)
	}
	if err := p.Err("gen"); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
	root := p.Nodes[0]
	if root.ID != "n000" || !root.IsRoot || root.ParentID != "" {
		t.Errorf("root = %+v", root)
	}
	if root.X != 0 || root.Y != 0 {
		t.Errorf("root at (%v, %v), want origin", root.X, root.Y)
	}
	checkPlacement(t, tr, p)
}

func TestLayoutOverfullGrid(t *testing.T) {
	tr := fanTree(t, 200, 4)
	pts := lattice(15, 10)
	p, g := run(t, tr, pts, Settings{Spread: 50, RadialBias: 50, ThemeMode: ThemeSmart}, 42)

	if len(p.Unplaced) != 0 {
		t.Fatalf("Unplaced = %v, want none", p.Unplaced)
	}
	if len(p.Nodes) != 200 {
		t.Fatalf("placed %d, want 200", len(p.Nodes))
	}
	if g.Len() <= 150 || p.GridPoints != g.Len() {
		t.Errorf("grid has %d points (reported %d), want growth past 150", g.Len(), p.GridPoints)
	}
	if p.Forced < 50 {
		t.Errorf("Forced = %d, want at least 50", p.Forced)
	}
	checkPlacement(t, tr, p)
}

func TestLayoutDeterministic(t *testing.T) {
	tr := fanTree(t, 60, 3)
	settings := Settings{Spread: 30, RadialBias: 70, ThemeMode: ThemeLayered}
	a, _ := run(t, tr, lattice(12, 8), settings, 7)
	b, _ := run(t, tr, lattice(12, 8), settings, 7)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed gave different placements")
	}
}

func TestLayoutEmptyGrid(t *testing.T) {
	tr := fanTree(t, 4, 3)
	p, g := run(t, tr, nil, Settings{}, 1)
	if len(p.Nodes) != 4 || len(p.Unplaced) != 0 {
		t.Fatalf("placed %d, unplaced %v", len(p.Nodes), p.Unplaced)
	}
	if g.Len() < 4 {
		t.Errorf("grid has %d points, want at least 4", g.Len())
	}
	if len(p.Warnings) == 0 {
		t.Error("expected a warning about the empty grid")
	}
	checkPlacement(t, tr, p)
}

func TestLayoutAnchors(t *testing.T) {
	tr := fanTree(t, 13, 4)
	var pts []grid.Point
	for x := -60; x <= 60; x += 10 {
		for y := 0; y <= 40; y += 10 {
			pts = append(pts, grid.Point{X: float64(x), Y: float64(y)})
		}
	}
	g := grid.Build(pts, 0)
	opts := Options{
		Origin: [2]float64{0, -100},
		Anchors: []grid.Anchor{
			{X: -50, Y: 0, Category: "gen"},
			{X: 50, Y: 0, Category: "gen"},
		},
	}
	p := Layout(tr, g, opts, rand.New(rand.NewPCG(3, 3)))
	if len(p.Unplaced) != 0 {
		t.Fatalf("Unplaced = %v", p.Unplaced)
	}
	byID := map[string]PlacedNode{}
	for _, n := range p.Nodes {
		byID[n.ID] = n
	}
	if r := byID["n000"]; r.X != -50 || r.Y != 0 {
		t.Errorf("root at (%v, %v), want primary anchor (-50, 0)", r.X, r.Y)
	}
	// the four first-level subtrees are balanced across both anchors
	right := 0
	for _, c := range []string{"n001", "n002", "n003", "n004"} {
		if byID[c].X > 0 {
			right++
		}
	}
	if right == 0 {
		t.Error("no first-level subtree grew from the second anchor")
	}
	checkPlacement(t, tr, p)
}

func TestLayoutZoneDeferral(t *testing.T) {
	tr := fanTree(t, 5, 4)
	settings := Settings{TierZones: map[item.Tier]Zone{
		item.TierApprentice: {Min: 80, Max: 100},
	}}
	// a single column: nothing within the hop bound reaches the band floor
	p, _ := run(t, tr, lattice(1, 21), settings, 1)
	if len(p.Unplaced) != 0 {
		t.Fatalf("Unplaced = %v", p.Unplaced)
	}
	if p.Deferred != 4 {
		t.Errorf("Deferred = %d, want 4", p.Deferred)
	}
	if p.Forced != 0 {
		t.Errorf("Forced = %d, want 0", p.Forced)
	}
	checkPlacement(t, tr, p)
}

func TestLayoutNoRoot(t *testing.T) {
	tr := tree.New("x")
	_ = tr.AddNode(tree.Node{ID: "a"})
	p, _ := run(t, tr, lattice(3, 3), Settings{}, 1)
	if len(p.Nodes) != 0 || len(p.Unplaced) != 1 {
		t.Fatalf("nodes %d, unplaced %v", len(p.Nodes), p.Unplaced)
	}
	ge, ok := p.Err("x").(*errors.GridExhaustedError)
	if !ok || ge.Category != "x" || ge.Code() != errors.ErrCodeGridExhausted {
		t.Errorf("Err() = %v, want a grid exhausted error for x", p.Err("x"))
	}
}

func checkPlacement(t *testing.T, tr *tree.Tree, p Placement) {
	t.Helper()
	seen := map[[2]float64]string{}
	ids := map[string]bool{}
	for _, n := range p.Nodes {
		ids[n.ID] = true
		at := [2]float64{n.X, n.Y}
		if other, ok := seen[at]; ok {
			t.Errorf("%s and %s share point %v", n.ID, other, at)
		}
		seen[at] = n.ID
	}
	for _, n := range p.Nodes {
		if n.IsRoot {
			continue
		}
		if !ids[n.ParentID] {
			t.Errorf("%s drawn from unplaced parent %q", n.ID, n.ParentID)
		}
	}
	if len(p.Nodes)+len(p.Unplaced) != tr.Len() {
		t.Errorf("placed %d + unplaced %d != %d nodes", len(p.Nodes), len(p.Unplaced), tr.Len())
	}
}
