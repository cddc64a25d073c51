package theme

import (
	"slices"
	"testing"

	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tree"
)

func named(names ...string) []item.Item {
	out := make([]item.Item, len(names))
	for i, n := range names {
		out[i] = item.Item{ID: string(rune('a' + i)), Name: n}
	}
	return out
}

func labels(a Assignment) []string {
	out := make([]string, len(a.Themes))
	for i, th := range a.Themes {
		out[i] = th.Label
	}
	return out
}

func TestDiscoverBasic(t *testing.T) {
	items := []item.Item{
		{ID: "a", Name: "Flames", TextFields: []string{"fire damage"}},
		{ID: "b", Name: "Firebolt", TextFields: []string{"fire damage"}},
		{ID: "c", Name: "Frostbite", TextFields: []string{"frost damage"}},
		{ID: "d", Name: "Ice Spike", TextFields: []string{"frost damage"}},
		{ID: "e", Name: "Sparks", TextFields: []string{"shock damage"}},
	}
	got := Discover(items, Options{})

	if want := []string{"fire", "frost", "shock"}; !slices.Equal(labels(got), want) {
		t.Fatalf("themes = %v, want %v", labels(got), want)
	}
	want := map[string]string{"a": "fire", "b": "fire", "c": "frost", "d": "frost", "e": "shock"}
	for id, l := range want {
		if got.Label(id) != l {
			t.Errorf("Label(%s) = %q, want %q", id, got.Label(id), l)
		}
	}
}

func TestDiscoverUnassigned(t *testing.T) {
	items := named("Fire Wall", "Fire Rune", "Frost Wall", "of the")
	got := Discover(items, Options{})
	if got.Label("d") != Unassigned {
		t.Errorf("Label(d) = %q, want %q", got.Label("d"), Unassigned)
	}
	last := got.Themes[len(got.Themes)-1]
	if last.Label != Unassigned || !slices.Equal(last.Members, []string{"d"}) {
		t.Errorf("last theme = %+v, want unassigned [d]", last)
	}
	if got.Label("missing") != Unassigned {
		t.Error("unknown IDs should be unassigned")
	}
}

func TestDiscoverMergesSubstringLabels(t *testing.T) {
	items := named("Fire Bolt", "Fire Rune", "Fireball Nova", "Fireball Blast", "Ice Shard", "Ice Storm")
	got := Discover(items, Options{SplitShare: 1})

	if want := []string{"fire", "ice"}; !slices.Equal(labels(got), want) {
		t.Fatalf("themes = %v, want %v", labels(got), want)
	}
	if want := []string{"a", "b", "c", "d"}; !slices.Equal(got.Themes[0].Members, want) {
		t.Errorf("fire members = %v, want %v", got.Themes[0].Members, want)
	}
}

func TestDiscoverMergesOverlap(t *testing.T) {
	items := named("Frost Cloak", "Frost Cloak Ward", "Frost Cloak Aura", "Frost Bite", "Shock Bolt", "Shock Nova")
	got := Discover(items, Options{SplitShare: 1})

	if want := []string{"cloak", "shock"}; !slices.Equal(labels(got), want) {
		t.Fatalf("themes = %v, want %v", labels(got), want)
	}
	if got.Label("d") != "cloak" {
		t.Errorf("Label(d) = %q, want cloak", got.Label("d"))
	}
}

func TestDiscoverSplitsLargeTheme(t *testing.T) {
	items := named("Fire Wall", "Fire Storm", "Fire Wall Rune", "Frost Nova", "Shock Nova")
	got := Discover(items, Options{})

	if want := []string{"fire", "wall", "nova"}; !slices.Equal(labels(got), want) {
		t.Fatalf("themes = %v, want %v", labels(got), want)
	}
	if want := []string{"a", "c"}; !slices.Equal(got.Themes[1].Members, want) {
		t.Errorf("wall members = %v, want %v", got.Themes[1].Members, want)
	}
	if got.Rank("wall") != 1 || got.Rank("nope") != 3 {
		t.Errorf("Rank() = %d/%d, want 1/3", got.Rank("wall"), got.Rank("nope"))
	}
}

func TestDiscoverEveryItemLabeled(t *testing.T) {
	items := named("Oakflesh", "Stoneflesh", "Ironflesh", "Paralyze", "Detect Life", "Detect Dead", "Candlelight", "Magelight")
	got := Discover(items, Options{TopN: 3})
	seen := 0
	for _, th := range got.Themes {
		seen += len(th.Members)
	}
	if seen != len(items) || len(got.Labels) != len(items) {
		t.Errorf("labeled %d/%d items, want %d", seen, len(got.Labels), len(items))
	}
}

func TestDiscoverDeterministic(t *testing.T) {
	items := named("Fire Wall", "Fire Storm", "Fire Wall Rune", "Frost Nova", "Shock Nova", "Ice Wall")
	a, b := Discover(items, Options{}), Discover(items, Options{})
	if !slices.Equal(labels(a), labels(b)) {
		t.Errorf("Discover() not deterministic: %v vs %v", labels(a), labels(b))
	}
}

func TestFixRoots(t *testing.T) {
	tr := tree.New("x")
	for _, n := range []tree.Node{
		{ID: "root", Theme: "misc"},
		{ID: "a", Theme: "fire"},
		{ID: "b", Theme: "frost"},
		{ID: "c", Theme: "fire"},
	} {
		if err := tr.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	_ = tr.SetRoot("root")
	for _, c := range []string{"a", "b", "c"} {
		if err := tr.Link("root", c); err != nil {
			t.Fatal(err)
		}
	}

	if got := FixRoots(tr); got != 1 {
		t.Errorf("FixRoots() = %d, want 1", got)
	}
	if got := tr.Node("root").Theme; got != "fire" {
		t.Errorf("root theme = %q, want fire", got)
	}
	if got := tr.Node("b").Theme; got != "frost" {
		t.Errorf("non-root theme changed to %q", got)
	}
	if got := FixRoots(tr); got != 0 {
		t.Errorf("second FixRoots() = %d, want 0", got)
	}
}
