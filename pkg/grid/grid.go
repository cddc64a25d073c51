// Package grid holds the candidate coordinates a layout may place nodes on.
//
// A [Graph] is a list of points with precomputed adjacency: each point knows
// up to eight nearest neighbors within a distance threshold. Adjacency is
// computed with a spatial hash whose bucket size equals the threshold, so
// building is linear in the number of points.
//
// Graphs only grow. [Graph.Extend] appends points and rebuilds adjacency,
// and [Densify] returns a longer point list; existing indices stay valid.
package grid

import (
	"cmp"
	"math"
	"slices"
)

// MaxNeighbors is the adjacency fan-out per point.
const MaxNeighbors = 8

// Point is one grid coordinate. An empty Category means any category may
// use the point.
type Point struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	Category  string  `json:"category,omitempty" yaml:"category,omitempty"`
	Neighbors []int   `json:"-" yaml:"-"`
}

// Allows reports whether a node of category may occupy p.
func (p Point) Allows(category string) bool {
	return p.Category == "" || p.Category == category
}

// Dist returns the Euclidean distance between two points.
func Dist(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// Graph is a set of points with adjacency.
type Graph struct {
	Points    []Point
	Threshold float64
}

// Build copies points and computes adjacency. A threshold of zero or less
// is estimated with [EstimateThreshold].
func Build(points []Point, threshold float64) *Graph {
	if threshold <= 0 {
		threshold = EstimateThreshold(points)
	}
	g := &Graph{Points: make([]Point, len(points)), Threshold: threshold}
	for i, p := range points {
		g.Points[i] = Point{X: p.X, Y: p.Y, Category: p.Category}
	}
	g.link()
	return g
}

// Len returns the number of points.
func (g *Graph) Len() int { return len(g.Points) }

// Neighbors returns the adjacency of point i, nearest first.
func (g *Graph) Neighbors(i int) []int { return g.Points[i].Neighbors }

// Extend appends points and rebuilds adjacency. Indices of existing points
// are unchanged.
func (g *Graph) Extend(points []Point) {
	for _, p := range points {
		g.Points = append(g.Points, Point{X: p.X, Y: p.Y, Category: p.Category})
	}
	g.link()
}

type cell struct{ x, y int }

type hash struct {
	size    float64
	buckets map[cell][]int
}

func newHash(size float64) *hash {
	if size <= 0 {
		size = 1
	}
	return &hash{size: size, buckets: make(map[cell][]int)}
}

func (h *hash) key(x, y float64) cell {
	return cell{int(math.Floor(x / h.size)), int(math.Floor(y / h.size))}
}

func (h *hash) add(i int, x, y float64) {
	k := h.key(x, y)
	h.buckets[k] = append(h.buckets[k], i)
}

// around calls fn for every index in the 3x3 block of cells around (x, y).
func (h *hash) around(x, y float64, fn func(i int)) {
	k := h.key(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, i := range h.buckets[cell{k.x + dx, k.y + dy}] {
				fn(i)
			}
		}
	}
}

func (g *Graph) link() {
	h := newHash(g.Threshold)
	for i, p := range g.Points {
		h.add(i, p.X, p.Y)
	}
	type near struct {
		i int
		d float64
	}
	for i := range g.Points {
		p := &g.Points[i]
		var cands []near
		h.around(p.X, p.Y, func(j int) {
			if j == i {
				return
			}
			q := g.Points[j]
			if d := Dist(p.X, p.Y, q.X, q.Y); d <= g.Threshold {
				cands = append(cands, near{j, d})
			}
		})
		slices.SortFunc(cands, func(a, b near) int {
			if c := cmp.Compare(a.d, b.d); c != 0 {
				return c
			}
			return cmp.Compare(a.i, b.i)
		})
		if len(cands) > MaxNeighbors {
			cands = cands[:MaxNeighbors]
		}
		p.Neighbors = make([]int, len(cands))
		for k, c := range cands {
			p.Neighbors[k] = c.i
		}
	}
}

// Nearest returns the index of the point closest to (x, y) for which ok
// returns true, ties by index. It returns -1 when no point qualifies.
// A nil ok accepts every point.
func (g *Graph) Nearest(x, y float64, ok func(i int) bool) int {
	best, bestD := -1, math.Inf(1)
	for i, p := range g.Points {
		if ok != nil && !ok(i) {
			continue
		}
		if d := Dist(x, y, p.X, p.Y); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// Centroid returns the mean coordinate of points, or the origin for none.
func Centroid(points []Point) (x, y float64) {
	if len(points) == 0 {
		return 0, 0
	}
	for _, p := range points {
		x += p.X
		y += p.Y
	}
	n := float64(len(points))
	return x / n, y / n
}

// Radius returns the largest distance from (cx, cy) to any point.
func Radius(points []Point, cx, cy float64) float64 {
	r := 0.0
	for _, p := range points {
		r = max(r, Dist(cx, cy, p.X, p.Y))
	}
	return r
}

// EstimateThreshold returns 1.5 times the mean nearest-neighbor distance,
// sampled over at most 256 points. It returns 1 for fewer than two points.
func EstimateThreshold(points []Point) float64 {
	if len(points) < 2 {
		return 1
	}
	step := max(1, len(points)/256)
	var sum float64
	var n int
	for i := 0; i < len(points); i += step {
		p := points[i]
		best := math.Inf(1)
		for j, q := range points {
			if j == i {
				continue
			}
			if d := Dist(p.X, p.Y, q.X, q.Y); d > 0 && d < best {
				best = d
			}
		}
		if !math.IsInf(best, 1) {
			sum += best
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return sum / float64(n) * 1.5
}
