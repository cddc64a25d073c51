package builder

import (
	"hash/fnv"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/similarity"
	"github.com/matzehuels/skilltree/pkg/theme"
)

// Defaults for [Options].
const (
	DefaultMaxChildren  = 5
	DefaultMaxTierGap   = 2
	DefaultRepairPasses = 20
)

// Weights holds every scoring constant used while building.
type Weights struct {
	// Parent selection.
	SameTheme    float64 `json:"same_theme" toml:"same_theme"`
	CrossTheme   float64 `json:"cross_theme" toml:"cross_theme"`
	TierSame     float64 `json:"tier_same" toml:"tier_same"`
	TierAdjacent float64 `json:"tier_adjacent" toml:"tier_adjacent"`
	TierSkip     float64 `json:"tier_skip" toml:"tier_skip"`
	TierFar      float64 `json:"tier_far" toml:"tier_far"`
	Similarity   float64 `json:"similarity" toml:"similarity"`
	Load         float64 `json:"load" toml:"load"`
	Jitter       float64 `json:"jitter" toml:"jitter"`

	// Orphan rescue.
	OrphanLowerTier    float64 `json:"orphan_lower_tier" toml:"orphan_lower_tier"`
	OrphanAdjacentTier float64 `json:"orphan_adjacent_tier" toml:"orphan_adjacent_tier"`
	OrphanSameTier     float64 `json:"orphan_same_tier" toml:"orphan_same_tier"`
	OrphanHigherTier   float64 `json:"orphan_higher_tier" toml:"orphan_higher_tier"`
	OrphanTheme        float64 `json:"orphan_theme" toml:"orphan_theme"`
	OrphanPerChild     float64 `json:"orphan_per_child" toml:"orphan_per_child"`

	// Convergence.
	ConvergenceSimilarity float64 `json:"convergence_similarity" toml:"convergence_similarity"`
	ConvergenceDepth      float64 `json:"convergence_depth" toml:"convergence_depth"`
	ConvergenceDepthStep  float64 `json:"convergence_depth_step" toml:"convergence_depth_step"`
	ConvergenceCrossTheme float64 `json:"convergence_cross_theme" toml:"convergence_cross_theme"`

	// Reachability repair.
	RepairLowerTier    float64 `json:"repair_lower_tier" toml:"repair_lower_tier"`
	RepairAdjacentTier float64 `json:"repair_adjacent_tier" toml:"repair_adjacent_tier"`
	RepairTheme        float64 `json:"repair_theme" toml:"repair_theme"`
	RepairPerChild     float64 `json:"repair_per_child" toml:"repair_per_child"`
}

// DefaultWeights returns the standard scoring constants.
func DefaultWeights() Weights {
	return Weights{
		SameTheme:    170,
		CrossTheme:   -50,
		TierSame:     10,
		TierAdjacent: 50,
		TierSkip:     30,
		TierFar:      -20,
		Similarity:   60,
		Load:         30,
		Jitter:       5,

		OrphanLowerTier:    50,
		OrphanAdjacentTier: 30,
		OrphanSameTier:     10,
		OrphanHigherTier:   -50,
		OrphanTheme:        40,
		OrphanPerChild:     15,

		ConvergenceSimilarity: 40,
		ConvergenceDepth:      20,
		ConvergenceDepthStep:  10,
		ConvergenceCrossTheme: 10,

		RepairLowerTier:    50,
		RepairAdjacentTier: 30,
		RepairTheme:        40,
		RepairPerChild:     10,
	}
}

// DefaultConvergenceMinimums returns the prerequisite minimums for the top
// two tiers of a scale ending at maxTier.
func DefaultConvergenceMinimums(maxTier item.Tier) map[item.Tier]int {
	return map[item.Tier]int{
		maxTier:     3,
		maxTier - 1: 2,
	}
}

// Options configures the builder.
type Options struct {
	MaxChildren int       `json:"max_children" validate:"gte=0,lte=8"`
	Seed        uint64    `json:"seed"`
	MaxTier     item.Tier `json:"max_tier" validate:"gte=0"`
	MaxTierGap  int       `json:"max_tier_gap" validate:"gte=0"`

	// ConvergenceMinimums maps a tier to the prerequisites its nodes need.
	// Tiers above MaxTier use the MaxTier entry.
	ConvergenceMinimums map[item.Tier]int `json:"convergence_minimums,omitempty"`

	RepairPasses int `json:"repair_passes" validate:"gte=0"`

	// RootOverrides maps a category to the item ID that must be its root.
	RootOverrides map[string]string `json:"root_overrides,omitempty"`

	Themes  theme.Options `json:"themes"`
	Weights *Weights      `json:"weights,omitempty"`

	// Oracle scores item pairs. Nil means a TF-IDF oracle per category.
	Oracle similarity.Oracle `json:"-"`
	Logger *log.Logger       `json:"-"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.MaxChildren <= 0 {
		o.MaxChildren = DefaultMaxChildren
	}
	if o.MaxTier <= 0 {
		o.MaxTier = item.DefaultMaxTier
	}
	if o.MaxTierGap <= 0 {
		o.MaxTierGap = DefaultMaxTierGap
	}
	if o.ConvergenceMinimums == nil {
		o.ConvergenceMinimums = DefaultConvergenceMinimums(o.MaxTier)
	}
	if o.RepairPasses <= 0 {
		o.RepairPasses = DefaultRepairPasses
	}
	if o.Weights == nil {
		w := DefaultWeights()
		o.Weights = &w
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Themes.SetDefaults()
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	return errors.ValidateStruct(errors.ErrCodeInvalidConfig, o)
}

// minPrereqs returns the convergence minimum for a tier.
func (o *Options) minPrereqs(t item.Tier) int {
	return o.ConvergenceMinimums[min(t, o.MaxTier)]
}

// CategoryRand returns the generator used for one category. The stream
// depends only on seed and category.
func CategoryRand(seed uint64, category string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(category))
	s := seed ^ h.Sum64()
	return rand.New(rand.NewPCG(s, s^0xdeadbeef))
}
