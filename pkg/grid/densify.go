package grid

import (
	"cmp"
	"math"
	"slices"
)

// DefaultDensifyRounds bounds radial extension in [Densify].
const DefaultDensifyRounds = 50

// DensifyOptions configures [Densify].
type DensifyOptions struct {
	// Threshold is the adjacency distance. Zero means estimated.
	Threshold float64

	// MinSpacing rejects new points closer than this to an existing one.
	// Zero means a quarter of Threshold.
	MinSpacing float64

	// Center is the reference point for "outermost". Nil means the centroid.
	Center *[2]float64

	// MaxRounds bounds radial extension. Zero means DefaultDensifyRounds.
	MaxRounds int
}

// Densify returns points followed by up to needed new points. It first
// fills midpoints between adjacent pairs, outermost pairs first, then grows
// outward from the outermost points round by round until enough points were
// added or a round adds nothing. The input slice is returned unchanged when
// needed is zero or less.
func Densify(points []Point, needed int, opts DensifyOptions) []Point {
	if needed <= 0 || len(points) == 0 {
		return points
	}
	if opts.Threshold <= 0 {
		opts.Threshold = EstimateThreshold(points)
	}
	if opts.MinSpacing <= 0 {
		opts.MinSpacing = opts.Threshold / 4
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultDensifyRounds
	}
	cx, cy := Centroid(points)
	if opts.Center != nil {
		cx, cy = opts.Center[0], opts.Center[1]
	}

	out := make([]Point, len(points), len(points)+needed)
	for i, p := range points {
		out[i] = Point{X: p.X, Y: p.Y, Category: p.Category}
	}
	occupied := newHash(opts.MinSpacing)
	for i, p := range out {
		occupied.add(i, p.X, p.Y)
	}
	added := 0
	tryAdd := func(x, y float64, category string) bool {
		clash := false
		occupied.around(x, y, func(j int) {
			if Dist(x, y, out[j].X, out[j].Y) < opts.MinSpacing {
				clash = true
			}
		})
		if clash {
			return false
		}
		occupied.add(len(out), x, y)
		out = append(out, Point{X: x, Y: y, Category: category})
		added++
		return true
	}

	g := Build(points, opts.Threshold)
	type pair struct {
		i, j int
		r    float64
	}
	var pairs []pair
	for i, p := range g.Points {
		for _, j := range p.Neighbors {
			if j <= i {
				continue
			}
			q := g.Points[j]
			mx, my := (p.X+q.X)/2, (p.Y+q.Y)/2
			pairs = append(pairs, pair{i, j, Dist(cx, cy, mx, my)})
		}
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		if c := cmp.Compare(b.r, a.r); c != 0 {
			return c
		}
		if c := cmp.Compare(a.i, b.i); c != 0 {
			return c
		}
		return cmp.Compare(a.j, b.j)
	})
	for _, pr := range pairs {
		if added >= needed {
			return out
		}
		p, q := out[pr.i], out[pr.j]
		category := ""
		if p.Category == q.Category {
			category = p.Category
		}
		tryAdd((p.X+q.X)/2, (p.Y+q.Y)/2, category)
	}

	step := opts.Threshold * 0.8
	for round := 0; round < opts.MaxRounds && added < needed; round++ {
		rim := outermost(out, cx, cy)
		before := added
		for _, i := range rim {
			if added >= needed {
				break
			}
			p := out[i]
			dx, dy := p.X-cx, p.Y-cy
			d := math.Hypot(dx, dy)
			if d == 0 {
				dx, dy, d = 1, 0, 1
			}
			tryAdd(p.X+dx/d*step, p.Y+dy/d*step, p.Category)
		}
		if added == before {
			break
		}
	}
	return out
}

// outermost returns the indices of points within 10% of the maximum radius,
// ordered by angle around (cx, cy) and then index.
func outermost(points []Point, cx, cy float64) []int {
	r := Radius(points, cx, cy)
	var rim []int
	for i, p := range points {
		if Dist(cx, cy, p.X, p.Y) >= 0.9*r {
			rim = append(rim, i)
		}
	}
	slices.SortFunc(rim, func(a, b int) int {
		aa := math.Atan2(points[a].Y-cy, points[a].X-cx)
		ab := math.Atan2(points[b].Y-cy, points[b].X-cx)
		if c := cmp.Compare(aa, ab); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return rim
}
