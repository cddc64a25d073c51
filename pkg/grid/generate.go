package grid

import (
	"math"
)

// Defaults for [GenerateOptions].
const (
	DefaultTierSpacing = 40.0
	DefaultRingRadius  = 60.0
	DefaultSlack       = 1.25
)

// GenerateOptions configures [Generate].
type GenerateOptions struct {
	Mode        Mode    `json:"mode" toml:"mode" validate:"omitempty,oneof=radial linear"`
	TierSpacing float64 `json:"tier_spacing" toml:"tier_spacing" validate:"gte=0"`
	RingRadius  float64 `json:"ring_radius" toml:"ring_radius" validate:"gte=0"`

	// Slack is the ratio of generated points to items per category.
	Slack float64 `json:"slack" toml:"slack" validate:"gte=0"`
}

func (o *GenerateOptions) setDefaults() {
	if o.Mode == "" {
		o.Mode = ModeRadial
	}
	if o.TierSpacing <= 0 {
		o.TierSpacing = DefaultTierSpacing
	}
	if o.RingRadius <= 0 {
		o.RingRadius = DefaultRingRadius
	}
	if o.Slack < 1 {
		o.Slack = DefaultSlack
	}
}

// Generate lays out tagged points and one anchor per category. Radial mode
// gives each category an angular sector of concentric rings around the
// origin; linear mode gives each category a column of rows.
func Generate(categories []string, counts map[string]int, opts GenerateOptions) *Spec {
	opts.setDefaults()
	s := &Spec{
		TierSpacing: opts.TierSpacing,
		RingRadius:  opts.RingRadius,
		Mode:        opts.Mode,
	}
	if opts.Mode == ModeLinear {
		generateLinear(s, categories, counts, opts)
	} else {
		generateRadial(s, categories, counts, opts)
	}
	return s
}

func want(counts map[string]int, category string, slack float64) int {
	return max(1, int(math.Ceil(float64(counts[category])*slack)))
}

func generateRadial(s *Spec, categories []string, counts map[string]int, opts GenerateOptions) {
	if len(categories) == 0 {
		return
	}
	sector := 2 * math.Pi / float64(len(categories))
	for i, c := range categories {
		start := float64(i) * sector
		mid := start + sector/2
		s.Anchors = append(s.Anchors, Anchor{
			X:        opts.RingRadius * math.Cos(mid),
			Y:        opts.RingRadius * math.Sin(mid),
			Category: c,
		})
		n := want(counts, c, opts.Slack)
		for ring := 0; n > 0; ring++ {
			r := opts.RingRadius + float64(ring)*opts.TierSpacing
			m := max(1, int(r*sector/opts.TierSpacing))
			for k := 0; k < m && n > 0; k++ {
				a := start + sector*(float64(k)+0.5)/float64(m)
				s.Points = append(s.Points, Point{X: r * math.Cos(a), Y: r * math.Sin(a), Category: c})
				n--
			}
		}
	}
}

func generateLinear(s *Spec, categories []string, counts map[string]int, opts GenerateOptions) {
	x0 := 0.0
	for _, c := range categories {
		n := want(counts, c, opts.Slack)
		cols := max(1, int(math.Ceil(math.Sqrt(float64(n)))))
		width := float64(cols-1) * opts.TierSpacing
		s.Anchors = append(s.Anchors, Anchor{
			X:        x0 + width/2,
			Y:        opts.RingRadius - opts.TierSpacing,
			Category: c,
		})
		for k := 0; k < n; k++ {
			row, col := k/cols, k%cols
			s.Points = append(s.Points, Point{
				X:        x0 + float64(col)*opts.TierSpacing,
				Y:        opts.RingRadius + float64(row)*opts.TierSpacing,
				Category: c,
			})
		}
		x0 += width + 2*opts.TierSpacing
	}
}
