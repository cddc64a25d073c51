package item

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is an ordinal rank. Lower tiers must precede higher tiers in the
// prerequisite order.
type Tier int

// Named tiers of the default five-rank scale.
const (
	TierNovice Tier = iota
	TierApprentice
	TierAdept
	TierExpert
	TierMaster
)

// DefaultMaxTier is the highest tier of the default scale.
const DefaultMaxTier = TierMaster

var tierNames = []string{"novice", "apprentice", "adept", "expert", "master"}

// String returns the tier name for the default scale, or the number.
func (t Tier) String() string {
	if t >= 0 && int(t) < len(tierNames) {
		return tierNames[t]
	}
	return strconv.Itoa(int(t))
}

// ParseTier accepts a tier number or a case-insensitive tier name.
func ParseTier(s string) (Tier, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Tier(n), nil
	}
	if i := slices.Index(tierNames, strings.ToLower(s)); i >= 0 {
		return Tier(i), nil
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

// UnmarshalJSON accepts both numeric and named tiers.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Tier(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tier must be a number or name: %w", err)
	}
	v, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalYAML accepts both numeric and named tiers.
func (t *Tier) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseTier(node.Value)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Item is one entry of the catalog.
type Item struct {
	ID         string   `json:"id" yaml:"id" bson:"id" validate:"required"`
	Category   string   `json:"category" yaml:"category" bson:"category" validate:"required"`
	Tier       Tier     `json:"tier" yaml:"tier" bson:"tier" validate:"gte=0"`
	Name       string   `json:"name" yaml:"name" bson:"name" validate:"required"`
	TextFields []string `json:"text_fields,omitempty" yaml:"text_fields,omitempty" bson:"text_fields,omitempty"`
}

// Text returns the searchable text of the item. The name is repeated three
// times since names carry the strongest thematic signal.
func (it Item) Text() string {
	parts := make([]string, 0, 3+len(it.TextFields))
	parts = append(parts, it.Name, it.Name, it.Name)
	parts = append(parts, it.TextFields...)
	return strings.Join(parts, " ")
}

// SortByTier orders items by tier, then ID.
func SortByTier(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Tiers returns the distinct tiers present in items, ascending.
func Tiers(items []Item) []Tier {
	var out []Tier
	for _, it := range items {
		if !slices.Contains(out, it.Tier) {
			out = append(out, it.Tier)
		}
	}
	slices.Sort(out)
	return out
}
