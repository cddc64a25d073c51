package item

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/skilltree/pkg/errors"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"0", TierNovice, false},
		{"3", TierExpert, false},
		{"Master", TierMaster, false},
		{" adept ", TierAdept, false},
		{"legendary", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTier(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTierString(t *testing.T) {
	if got := TierApprentice.String(); got != "apprentice" {
		t.Errorf("String() = %q, want %q", got, "apprentice")
	}
	if got := Tier(7).String(); got != "7" {
		t.Errorf("String() = %q, want %q", got, "7")
	}
}

func TestReadJSON(t *testing.T) {
	in := `{
	  "categories": ["fire", "ward"],
	  "items": [
	    {"id": "a", "category": "fire", "tier": 0, "name": "Flames"},
	    {"id": "b", "category": "fire", "tier": "adept", "name": "Fireball", "text_fields": ["explodes"]}
	  ]
	}`
	cat, err := Read(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(cat.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(cat.Items))
	}
	if cat.Items[1].Tier != TierAdept {
		t.Errorf("Items[1].Tier = %v, want %v", cat.Items[1].Tier, TierAdept)
	}

	groups := cat.ByCategory()
	if len(groups["fire"]) != 2 {
		t.Errorf("len(fire) = %d, want 2", len(groups["fire"]))
	}
	if items, ok := groups["ward"]; !ok || len(items) != 0 {
		t.Errorf("ward = %v (present %v), want empty declared category", items, ok)
	}
}

func TestReadBareList(t *testing.T) {
	in := `[{"id": "a", "category": "fire", "tier": 1, "name": "Flames"}]`
	cat, err := Read(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := cat.CategoryNames(); len(got) != 1 || got[0] != "fire" {
		t.Errorf("CategoryNames() = %v, want [fire]", got)
	}
}

func TestReadYAML(t *testing.T) {
	in := `
categories: [frost]
items:
  - id: f1
    category: frost
    tier: novice
    name: Frostbite
  - id: f2
    category: frost
    tier: 2
    name: Ice Spike
    text_fields: [cold, spike]
`
	cat, err := Read(strings.NewReader(in), FormatYAML)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cat.Items[0].Tier != TierNovice || cat.Items[1].Tier != TierAdept {
		t.Errorf("tiers = %v, %v, want novice, adept", cat.Items[0].Tier, cat.Items[1].Tier)
	}
	if len(cat.Items[1].TextFields) != 2 {
		t.Errorf("TextFields = %v, want 2 entries", cat.Items[1].TextFields)
	}
}

func TestReadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"items": [`, errors.ErrCodeInvalidFormat},
		{"missing name", `[{"id": "a", "category": "fire", "tier": 0}]`, errors.ErrCodeInvalidInput},
		{"negative tier", `[{"id": "a", "category": "fire", "tier": -1, "name": "x"}]`, errors.ErrCodeInvalidInput},
		{"duplicate id", `[{"id": "a", "category": "fire", "tier": 0, "name": "x"},{"id": "a", "category": "fire", "tier": 1, "name": "y"}]`, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), FormatJSON)
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	cat := &Catalog{Items: []Item{
		{ID: "a", Category: "fire", Tier: TierNovice, Name: "Flames"},
		{ID: "b", Category: "fire", Tier: TierExpert, Name: "Incinerate"},
	}}

	for _, ext := range []string{".json", ".yaml"} {
		path := filepath.Join(t.TempDir(), "catalog"+ext)
		var buf bytes.Buffer
		if err := Write(&buf, cat, FormatFromPath(path)); err != nil {
			t.Fatalf("Write(%s) error = %v", ext, err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", ext, err)
		}
		if len(got.Items) != 2 || got.Items[1].Tier != TierExpert {
			t.Errorf("ReadFile(%s) = %+v", ext, got.Items)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}

func TestSortByTier(t *testing.T) {
	items := []Item{
		{ID: "c", Tier: 2},
		{ID: "b", Tier: 0},
		{ID: "a", Tier: 2},
	}
	SortByTier(items)
	got := []string{items[0].ID, items[1].ID, items[2].ID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortByTier() = %v, want %v", got, want)
		}
	}
	if tiers := Tiers(items); len(tiers) != 2 || tiers[0] != 0 || tiers[1] != 2 {
		t.Errorf("Tiers() = %v, want [0 2]", tiers)
	}
}

func TestText(t *testing.T) {
	it := Item{Name: "Sparks", TextFields: []string{"shock"}}
	if got := it.Text(); got != "Sparks Sparks Sparks shock" {
		t.Errorf("Text() = %q", got)
	}
}
