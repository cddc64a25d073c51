package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
)

// ThemeMode controls thematic clustering.
type ThemeMode string

// Theme modes.
const (
	ThemeNone    ThemeMode = "none"
	ThemeLayered ThemeMode = "layered"
	ThemeSmart   ThemeMode = "smart"
)

// Defaults for [Settings].
const (
	DefaultMaxChildren  = 5
	DefaultHopBound     = 10
	MinHopBound         = 8
	MaxHopBound         = 12
	DefaultDensityLimit = 6
	DefaultFloorSlack   = 15.0
	DefaultRetryPasses  = 30
	DefaultSpread       = 50.0
	DefaultRadialBias   = 50.0
	DefaultBranchDeg    = 25.0
)

// Zone is a band of the grid radius, in percent.
type Zone struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether pct lies inside the band.
func (z Zone) Contains(pct float64) bool { return pct >= z.Min && pct <= z.Max }

// Outside returns how far pct lies outside the band, or zero.
func (z Zone) Outside(pct float64) float64 {
	switch {
	case pct < z.Min:
		return z.Min - pct
	case pct > z.Max:
		return pct - z.Max
	default:
		return 0
	}
}

// Weights are the scoring constants of the wave and retry phases.
type Weights struct {
	Direction      float64 `json:"direction" toml:"direction"`
	Radial         float64 `json:"radial" toml:"radial"`
	Hop            float64 `json:"hop" toml:"hop"`
	Zone           float64 `json:"zone" toml:"zone"`
	ThemeSector    float64 `json:"theme_sector" toml:"theme_sector"`
	SiblingSpacing float64 `json:"sibling_spacing" toml:"sibling_spacing"`

	OriginalParent float64 `json:"original_parent" toml:"original_parent"`
	ZoneSoft       float64 `json:"zone_soft" toml:"zone_soft"`
	ThemeAffinity  float64 `json:"theme_affinity" toml:"theme_affinity"`
	ThemePenalty   float64 `json:"theme_penalty" toml:"theme_penalty"`
	TierOrder      float64 `json:"tier_order" toml:"tier_order"`
	FanOut         float64 `json:"fan_out" toml:"fan_out"`
	RetryHop       float64 `json:"retry_hop" toml:"retry_hop"`
}

// DefaultWeights returns the standard layout weights.
func DefaultWeights() Weights {
	return Weights{
		Direction:      30,
		Radial:         20,
		Hop:            4,
		Zone:           1,
		ThemeSector:    15,
		SiblingSpacing: 20,

		OriginalParent: 40,
		ZoneSoft:       0.5,
		ThemeAffinity:  20,
		ThemePenalty:   10,
		TierOrder:      100,
		FanOut:         50,
		RetryHop:       3,
	}
}

// Settings are the user-facing layout knobs.
type Settings struct {
	MaxChildren      int                `json:"max_children"`
	TierZones        map[item.Tier]Zone `json:"tier_zones,omitempty"`
	Spread           float64            `json:"spread"`
	RadialBias       float64            `json:"radial_bias"`
	BranchSpacingDeg float64            `json:"branch_spacing_deg"`
	ThemeMode        ThemeMode          `json:"theme_mode"`
	HopBound         int                `json:"hop_bound"`
	DensityLimit     int                `json:"density_limit"`
	FloorSlack       float64            `json:"floor_slack"`
	RetryPasses      int                `json:"retry_passes"`
	Weights          *Weights           `json:"weights,omitempty"`
}

// SetDefaults fills zero fields and clamps the hop bound.
func (s *Settings) SetDefaults() {
	if s.MaxChildren <= 0 {
		s.MaxChildren = DefaultMaxChildren
	}
	if s.HopBound <= 0 {
		s.HopBound = DefaultHopBound
	}
	s.HopBound = max(MinHopBound, min(MaxHopBound, s.HopBound))
	if s.DensityLimit <= 0 {
		s.DensityLimit = DefaultDensityLimit
	}
	if s.FloorSlack <= 0 {
		s.FloorSlack = DefaultFloorSlack
	}
	if s.RetryPasses <= 0 {
		s.RetryPasses = DefaultRetryPasses
	}
	if s.ThemeMode == "" {
		s.ThemeMode = ThemeNone
	}
	if s.Weights == nil {
		w := DefaultWeights()
		s.Weights = &w
	}
}

// Options are the per-call inputs of [Layout].
type Options struct {
	Settings

	// Origin is the point radii and outward directions are measured from.
	Origin [2]float64

	// Anchors are the category's growth origins, primary first. With none,
	// the root goes to the point nearest Origin.
	Anchors []grid.Anchor

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	o.Settings.SetDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
