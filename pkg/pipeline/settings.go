package pipeline

import (
	"maps"
	"slices"

	"github.com/matzehuels/skilltree/pkg/builder"
	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/layout"
	"github.com/matzehuels/skilltree/pkg/theme"
	"github.com/matzehuels/skilltree/pkg/tree/sanitize"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultMaxChildren      = 5
	DefaultSeed             = uint64(42)
	DefaultSpread           = layout.DefaultSpread
	DefaultRadialBias       = layout.DefaultRadialBias
	DefaultBranchSpacingDeg = layout.DefaultBranchDeg
	DefaultThemeMode        = string(layout.ThemeSmart)
	DefaultSanitizeLimit    = sanitize.DefaultMaxIterations
)

// Settings are the user-facing build knobs. They are read from TOML files
// and JSON requests, and hashed into cache keys.
type Settings struct {
	MaxChildren int       `json:"max_children" toml:"max_children" validate:"gte=1,lte=8"`
	Seed        uint64    `json:"seed" toml:"seed"`
	MaxTier     item.Tier `json:"max_tier,omitempty" toml:"max_tier" validate:"gte=0"`

	// TierZones maps a tier (number or name) to a [min%, max%] band of the
	// grid radius.
	TierZones map[string][2]float64 `json:"tier_zones,omitempty" toml:"tier_zones"`

	Spread           float64 `json:"spread" toml:"spread" validate:"gte=0,lte=100"`
	RadialBias       float64 `json:"radial_bias" toml:"radial_bias" validate:"gte=0,lte=100"`
	BranchSpacingDeg float64 `json:"branch_spacing_deg" toml:"branch_spacing_deg" validate:"gte=0,lte=180"`
	ThemeMode        string  `json:"theme_mode" toml:"theme_mode" validate:"oneof=none layered smart"`

	// RootOverrides pins the root item of a category.
	RootOverrides map[string]string `json:"root_overrides,omitempty" toml:"root_overrides"`

	// ConvergenceMinimums maps a tier (number or name) to the number of
	// prerequisites its nodes need. Empty means the top two tiers need 3
	// and 2.
	ConvergenceMinimums map[string]int `json:"convergence_minimums,omitempty" toml:"convergence_minimums"`

	SanitizeIterations int `json:"sanitize_iterations,omitempty" toml:"sanitize_iterations" validate:"gte=0"`
	RepairPasses       int `json:"repair_passes,omitempty" toml:"repair_passes" validate:"gte=0"`
	RetryPasses        int `json:"retry_passes,omitempty" toml:"retry_passes" validate:"gte=0"`
	HopBound           int `json:"hop_bound,omitempty" toml:"hop_bound" validate:"gte=0,lte=12"`
	DensityLimit       int `json:"density_limit,omitempty" toml:"density_limit" validate:"gte=0,lte=8"`

	Themes theme.Options `json:"themes" toml:"themes"`

	BuilderWeights *builder.Weights `json:"builder_weights,omitempty" toml:"builder_weights"`
	LayoutWeights  *layout.Weights  `json:"layout_weights,omitempty" toml:"layout_weights"`
}

// DefaultSettings returns the settings used when no file or flag says
// otherwise. Spread and radial bias default to 50; zero is a valid value,
// so [Settings.SetDefaults] never touches them.
func DefaultSettings() Settings {
	s := Settings{
		Spread:           DefaultSpread,
		RadialBias:       DefaultRadialBias,
		BranchSpacingDeg: DefaultBranchSpacingDeg,
	}
	s.SetDefaults()
	return s
}

// SetDefaults fills zero fields whose zero value is not meaningful.
func (s *Settings) SetDefaults() {
	if s.MaxChildren == 0 {
		s.MaxChildren = DefaultMaxChildren
	}
	if s.Seed == 0 {
		s.Seed = DefaultSeed
	}
	if s.MaxTier == 0 {
		s.MaxTier = item.DefaultMaxTier
	}
	if s.ThemeMode == "" {
		s.ThemeMode = DefaultThemeMode
	}
	if s.SanitizeIterations == 0 {
		s.SanitizeIterations = DefaultSanitizeLimit
	}
}

// Validate checks field ranges and tier-zone bands.
func (s *Settings) Validate() error {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidConfig, s); err != nil {
		return err
	}
	if _, err := s.tierZones(); err != nil {
		return err
	}
	if _, err := s.convergenceMinimums(); err != nil {
		return err
	}
	return nil
}

func (s *Settings) tierZones() (map[item.Tier]layout.Zone, error) {
	if len(s.TierZones) == 0 {
		return nil, nil
	}
	out := make(map[item.Tier]layout.Zone, len(s.TierZones))
	for _, key := range slices.Sorted(maps.Keys(s.TierZones)) {
		band := s.TierZones[key]
		tier, err := item.ParseTier(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "tier_zones key %q", key)
		}
		if band[0] < 0 || band[1] > 100 || band[0] > band[1] {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"tier_zones[%s] = [%g, %g]: bounds must satisfy 0 <= min <= max <= 100", key, band[0], band[1])
		}
		if _, dup := out[tier]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "tier_zones names tier %d twice", tier)
		}
		out[tier] = layout.Zone{Min: band[0], Max: band[1]}
	}
	return out, nil
}

func (s *Settings) convergenceMinimums() (map[item.Tier]int, error) {
	if len(s.ConvergenceMinimums) == 0 {
		return nil, nil
	}
	out := make(map[item.Tier]int, len(s.ConvergenceMinimums))
	for key, n := range s.ConvergenceMinimums {
		tier, err := item.ParseTier(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "convergence_minimums key %q", key)
		}
		if n < 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "convergence_minimums[%s] must be at least 0", key)
		}
		out[tier] = n
	}
	return out, nil
}

// BuilderOptions maps the settings onto [builder.Options]. Call it on
// validated settings.
func (s *Settings) BuilderOptions() builder.Options {
	conv, _ := s.convergenceMinimums()
	return builder.Options{
		MaxChildren:         s.MaxChildren,
		Seed:                s.Seed,
		MaxTier:             s.MaxTier,
		ConvergenceMinimums: conv,
		RepairPasses:        s.RepairPasses,
		RootOverrides:       s.RootOverrides,
		Themes:              s.Themes,
		Weights:             s.BuilderWeights,
	}
}

// SanitizeOptions maps the settings onto [sanitize.Options].
func (s *Settings) SanitizeOptions() sanitize.Options {
	return sanitize.Options{MaxChildren: s.MaxChildren, MaxIterations: s.SanitizeIterations}
}

// LayoutSettings maps the settings onto [layout.Settings]. Call it on
// validated settings.
func (s *Settings) LayoutSettings() layout.Settings {
	zones, _ := s.tierZones()
	return layout.Settings{
		MaxChildren:      s.MaxChildren,
		TierZones:        zones,
		Spread:           s.Spread,
		RadialBias:       s.RadialBias,
		BranchSpacingDeg: s.BranchSpacingDeg,
		ThemeMode:        layout.ThemeMode(s.ThemeMode),
		HopBound:         s.HopBound,
		DensityLimit:     s.DensityLimit,
		RetryPasses:      s.RetryPasses,
		Weights:          s.LayoutWeights,
	}
}
