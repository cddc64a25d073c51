package builder

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/similarity"
	"github.com/matzehuels/skilltree/pkg/tree"
	"github.com/matzehuels/skilltree/pkg/tree/sanitize"
)

func fiveItems() []item.Item {
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	tiers := []item.Tier{0, 1, 1, 2, 3}
	out := make([]item.Item, len(names))
	for i := range names {
		out[i] = item.Item{ID: string(rune('a' + i)), Category: "x", Tier: tiers[i], Name: names[i]}
	}
	return out
}

var words = []string{
	"fire", "frost", "shock", "ward", "rune", "cloak", "storm", "bolt",
	"flesh", "light", "shadow", "blade", "bound", "summon", "heal", "fear",
}

// catalog generates n items with two-word names and mixed tiers.
func catalog(n int, seed uint64) []item.Item {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]item.Item, n)
	for i := range out {
		a, b := words[rng.IntN(len(words))], words[rng.IntN(len(words))]
		out[i] = item.Item{
			ID:         fmt.Sprintf("item%03d", i),
			Category:   "gen",
			Tier:       item.Tier(rng.IntN(5)),
			Name:       a + " " + b,
			TextFields: []string{a + " " + words[rng.IntN(len(words))]},
		}
	}
	out[0].Tier = item.TierNovice
	return out
}

func TestBuildCategoryFiveItems(t *testing.T) {
	opts := Options{MaxChildren: 5, Oracle: similarity.Uniform(0.5)}
	tr, r, err := BuildCategory("x", fiveItems(), opts, nil)
	if err != nil {
		t.Fatalf("BuildCategory() error = %v", err)
	}

	if tr.Root() != "a" || r.Root != "a" {
		t.Errorf("root = %q, want a", tr.Root())
	}
	roots := 0
	for _, n := range tr.Nodes() {
		if n.IsRoot {
			roots++
		}
	}
	if roots != 1 {
		t.Errorf("roots = %d, want 1", roots)
	}
	if got := len(tr.Reachable()); got != 5 {
		t.Errorf("reachable = %d, want 5", got)
	}
	if r.Rescued != 0 {
		t.Errorf("Rescued = %d, want 0", r.Rescued)
	}
	if r.ConvergenceEdges != 1 || len(tr.Node("e").Prereqs) != 2 {
		t.Errorf("ConvergenceEdges = %d, e.Prereqs = %v, want 1 edge and 2 prereqs", r.ConvergenceEdges, tr.Node("e").Prereqs)
	}
	if issues := tree.Validate(tr, 5); len(issues) != 0 {
		t.Errorf("Validate() = %v", issues)
	}
}

func TestBuildCategoryConvergenceOverride(t *testing.T) {
	opts := Options{
		Oracle:              similarity.Uniform(0.5),
		ConvergenceMinimums: map[item.Tier]int{3: 1, 4: 1},
	}
	tr, r, err := BuildCategory("x", fiveItems(), opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.ConvergenceEdges != 0 || len(tr.Node("e").Prereqs) != 1 {
		t.Errorf("ConvergenceEdges = %d, want 0", r.ConvergenceEdges)
	}
}

func TestBuildCategoryErrors(t *testing.T) {
	tests := []struct {
		name  string
		items []item.Item
		want  errors.Code
	}{
		{"empty", nil, errors.ErrCodeEmptyCategory},
		{"no root", []item.Item{{ID: "a", Tier: 9}, {ID: "b", Tier: -1}}, errors.ErrCodeNoRootCandidate},
		{"duplicate", []item.Item{{ID: "a"}, {ID: "a"}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := BuildCategory("x", tt.items, Options{}, nil)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("BuildCategory() code = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestBuildCategoryRootOverride(t *testing.T) {
	items := fiveItems()
	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"present", "c", "c"},
		{"missing", "zzz", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Oracle: similarity.Uniform(0.5), RootOverrides: map[string]string{"x": tt.override}}
			tr, _, err := BuildCategory("x", items, opts, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tr.Root() != tt.want {
				t.Errorf("Root() = %q, want %q", tr.Root(), tt.want)
			}
			if len(tr.Unreachable()) != 0 {
				t.Errorf("Unreachable() = %v", tr.Unreachable())
			}
		})
	}
}

func TestBuildCategoryRootTieBreak(t *testing.T) {
	items := []item.Item{{ID: "z", Name: "Zeta"}, {ID: "y", Name: "Yank"}, {ID: "x", Name: "Xray"}}
	seen := map[string]bool{}
	for seed := range uint64(32) {
		tr, _, err := BuildCategory("c", items, Options{Seed: seed}, nil)
		if err != nil {
			t.Fatal(err)
		}
		seen[tr.Root()] = true
	}
	if len(seen) < 2 {
		t.Errorf("tie-break picked only %v across seeds", seen)
	}
}

func TestBuildCategoryProperties(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42} {
		t.Run(fmt.Sprint(seed), func(t *testing.T) {
			opts := Options{MaxChildren: 4, Seed: seed}
			tr, _, err := BuildCategory("gen", catalog(80, seed), opts, nil)
			if err != nil {
				t.Fatal(err)
			}
			if tree.HasCycle(tr) {
				t.Fatal("prerequisite cycle")
			}
			if got := tr.Unreachable(); len(got) != 0 {
				t.Errorf("Unreachable() = %v", got)
			}
			unlocked := tr.SimulateUnlocks()
			if len(unlocked) != tr.Len() {
				t.Errorf("unlocked %d of %d", len(unlocked), tr.Len())
			}

			opts.SetDefaults()
			for _, n := range tr.Nodes() {
				need := opts.minPrereqs(n.Tier)
				if n.IsRoot || len(n.Prereqs) >= need {
					continue
				}
				if eligible := convergenceEligible(tr, n); eligible >= need-len(n.Prereqs) {
					t.Errorf("%s (tier %d) has %d prereqs, want %d with %d eligible", n.ID, n.Tier, len(n.Prereqs), need, eligible)
				}
			}

			r := sanitize.Sanitize(tr, sanitize.Options{MaxChildren: 4})
			if r.LimitReached {
				t.Fatalf("sanitize hit its iteration limit: %+v", r)
			}
			for _, issue := range tree.Validate(tr, 4) {
				t.Errorf("after sanitize: %v", issue)
			}
		})
	}
}

func convergenceEligible(tr *tree.Tree, n *tree.Node) int {
	reach := tr.Reachable()
	count := 0
	for _, c := range tr.Nodes() {
		if c.ID == n.ID || !reach[c.ID] || c.Tier >= n.Tier || c.Depth >= n.Depth ||
			slices.Contains(n.Prereqs, c.ID) || tr.IsDescendant(n.ID, c.ID) || tr.Requires(c.ID, n.ID) {
			continue
		}
		count++
	}
	return count
}

func TestBuildCategoryDeterministic(t *testing.T) {
	items := catalog(60, 3)
	encode := func() []byte {
		tr, _, err := BuildCategory("gen", items, Options{Seed: 42}, nil)
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(tr.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		return data
	}
	if a, b := encode(), encode(); string(a) != string(b) {
		t.Error("two builds with seed 42 differ")
	}
}

func TestBuildIsolatesCategories(t *testing.T) {
	f := Build(map[string][]item.Item{
		"ok":    fiveItems(),
		"empty": nil,
	}, Options{Oracle: similarity.Uniform(0.5)})

	if _, ok := f.Trees["ok"]; !ok {
		t.Error("category ok missing")
	}
	if !errors.Is(f.Errors["empty"], errors.ErrCodeEmptyCategory) {
		t.Errorf("Errors[empty] = %v, want EMPTY_CATEGORY", f.Errors["empty"])
	}
}

func TestCategoryRand(t *testing.T) {
	a, b := CategoryRand(42, "fire"), CategoryRand(42, "fire")
	if a.Uint64() != b.Uint64() {
		t.Error("CategoryRand() not reproducible")
	}
	c, d := CategoryRand(42, "fire"), CategoryRand(42, "frost")
	if c.Uint64() == d.Uint64() {
		t.Error("CategoryRand() ignores the category")
	}
}

func TestOptionsValidate(t *testing.T) {
	o := Options{MaxChildren: 9}
	if err := o.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
	}
	o = Options{}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() defaults = %v", err)
	}
}
