package grid

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/item"
)

// Mode is the grid shape.
type Mode string

// Grid shapes.
const (
	ModeRadial Mode = "radial"
	ModeLinear Mode = "linear"
)

// ThresholdFactor scales tier spacing or nearest-neighbor spacing into an
// adjacency threshold.
const ThresholdFactor = 1.5

// Anchor is a growth origin for one category.
type Anchor struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Category string  `json:"category" yaml:"category" validate:"required"`
}

// Spec is the grid input document.
type Spec struct {
	Points      []Point  `json:"points" yaml:"points"`
	TierSpacing float64  `json:"tier_spacing" yaml:"tier_spacing" validate:"gte=0"`
	RingRadius  float64  `json:"ring_radius" yaml:"ring_radius" validate:"gte=0"`
	Mode        Mode     `json:"mode" yaml:"mode" validate:"omitempty,oneof=radial linear"`
	Anchors     []Anchor `json:"anchors,omitempty" yaml:"anchors,omitempty" validate:"dive"`
	Threshold   float64  `json:"threshold,omitempty" yaml:"threshold,omitempty" validate:"gte=0"`
}

// Validate checks field ranges and coordinates.
func (s *Spec) Validate() error {
	if err := errors.ValidateStruct(errors.ErrCodeInvalidInput, s); err != nil {
		return err
	}
	for i, p := range s.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "point %d has a non-finite coordinate", i)
		}
	}
	return nil
}

// EffectiveThreshold returns the explicit threshold, else TierSpacing times
// [ThresholdFactor], else an estimate from point spacing.
func (s *Spec) EffectiveThreshold() float64 {
	switch {
	case s.Threshold > 0:
		return s.Threshold
	case s.TierSpacing > 0:
		return s.TierSpacing * ThresholdFactor
	default:
		return EstimateThreshold(s.Points)
	}
}

// PointsFor returns the points a category may use: its tagged points and
// all untagged ones, in input order.
func (s *Spec) PointsFor(category string) []Point {
	var out []Point
	for _, p := range s.Points {
		if p.Allows(category) {
			out = append(out, p)
		}
	}
	return out
}

// Partition returns a copy of s in which every untagged point is tagged with
// exactly one of categories, so no two categories share a coordinate. When
// every category has an anchor, a point goes to the nearest primary anchor.
// Otherwise the plane around the centroid of the untagged points is cut into
// equal angular sectors, one per category in order.
func (s *Spec) Partition(categories []string) *Spec {
	out := *s
	out.Points = slices.Clone(s.Points)
	out.Anchors = slices.Clone(s.Anchors)
	var untagged []int
	for i, p := range out.Points {
		if p.Category == "" {
			untagged = append(untagged, i)
		}
	}
	if len(categories) == 0 || len(untagged) == 0 {
		return &out
	}

	primary := make([]Anchor, 0, len(categories))
	for _, c := range categories {
		a := s.AnchorsFor(c)
		if len(a) == 0 {
			primary = nil
			break
		}
		primary = append(primary, a[0])
	}
	if primary != nil {
		for _, i := range untagged {
			p := &out.Points[i]
			best, bestDist := 0, math.Inf(1)
			for k, a := range primary {
				if d := Dist(p.X, p.Y, a.X, a.Y); d < bestDist {
					best, bestDist = k, d
				}
			}
			p.Category = categories[best]
		}
		return &out
	}

	free := make([]Point, len(untagged))
	for k, i := range untagged {
		free[k] = out.Points[i]
	}
	cx, cy := Centroid(free)
	sector := 2 * math.Pi / float64(len(categories))
	for _, i := range untagged {
		p := &out.Points[i]
		a := math.Atan2(p.Y-cy, p.X-cx)
		if a < 0 {
			a += 2 * math.Pi
		}
		p.Category = categories[min(int(a/sector), len(categories)-1)]
	}
	return &out
}

// AnchorsFor returns the anchors of a category, primary first.
func (s *Spec) AnchorsFor(category string) []Anchor {
	var out []Anchor
	for _, a := range s.Anchors {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Origin returns the point a category's radii are measured from: the grid
// centre (0, 0) in radial mode, else the primary anchor, else the centroid
// of the category's points.
func (s *Spec) Origin(category string) [2]float64 {
	if s.Mode != ModeLinear {
		return [2]float64{}
	}
	if a := s.AnchorsFor(category); len(a) > 0 {
		return [2]float64{a[0].X, a[0].Y}
	}
	x, y := Centroid(s.PointsFor(category))
	return [2]float64{x, y}
}

// ReadSpecFile loads a grid spec from a JSON or YAML file.
func ReadSpecFile(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "grid file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return ReadSpec(f, item.FormatFromPath(path))
}

// ReadSpec decodes and validates a grid spec.
func ReadSpec(r io.Reader, format string) (*Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read grid")
	}
	var s Spec
	switch format {
	case item.FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode grid")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// WriteSpec encodes a grid spec.
func WriteSpec(w io.Writer, s *Spec, format string) error {
	if format == item.FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode grid: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
