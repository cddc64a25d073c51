package layout

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
)

// Metrics summarizes the visual quality of a placement.
type Metrics struct {
	Edges         int     `json:"edges" bson:"edges"`
	EdgeMean      float64 `json:"edge_mean" bson:"edge_mean"`
	EdgeStdDev    float64 `json:"edge_stddev" bson:"edge_stddev"`
	EdgeMax       float64 `json:"edge_max" bson:"edge_max"`
	Crossings     int     `json:"crossings" bson:"crossings"`
	ZoneAdherence float64 `json:"zone_adherence" bson:"zone_adherence"`
}

type segment struct {
	a, b   string
	x1, y1 float64
	x2, y2 float64
}

// ComputeMetrics measures drawn edge lengths, proper edge crossings and the
// share of zoned nodes that landed inside their tier band. radius is the grid
// radius used to express distances from origin as percentages.
func ComputeMetrics(nodes []PlacedNode, zones map[item.Tier]Zone, origin [2]float64, radius float64) Metrics {
	var m Metrics
	pos := make(map[string]PlacedNode, len(nodes))
	for _, n := range nodes {
		pos[n.ID] = n
	}

	var lengths []float64
	var segs []segment
	for _, n := range nodes {
		p, ok := pos[n.ParentID]
		if n.ParentID == "" || !ok {
			continue
		}
		lengths = append(lengths, grid.Dist(p.X, p.Y, n.X, n.Y))
		segs = append(segs, segment{a: p.ID, b: n.ID, x1: p.X, y1: p.Y, x2: n.X, y2: n.Y})
	}
	m.Edges = len(lengths)
	if len(lengths) > 0 {
		m.EdgeMean, m.EdgeStdDev = stat.MeanStdDev(lengths, nil)
		if len(lengths) == 1 {
			m.EdgeStdDev = 0
		}
		m.EdgeMax = floats.Max(lengths)
	}

	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			if shareEnd(segs[i], segs[j]) {
				continue
			}
			if crosses(segs[i], segs[j]) {
				m.Crossings++
			}
		}
	}

	zoned, inside := 0, 0
	for _, n := range nodes {
		z, ok := zones[n.Tier]
		if !ok || radius == 0 {
			continue
		}
		zoned++
		if z.Contains(grid.Dist(origin[0], origin[1], n.X, n.Y) / radius * 100) {
			inside++
		}
	}
	m.ZoneAdherence = 1
	if zoned > 0 {
		m.ZoneAdherence = float64(inside) / float64(zoned)
	}
	return m
}

func shareEnd(s, t segment) bool {
	return s.a == t.a || s.a == t.b || s.b == t.a || s.b == t.b
}

func orient(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// crosses reports a proper intersection; touching or collinear segments do
// not count.
func crosses(s, t segment) bool {
	d1 := orient(s.x1, s.y1, s.x2, s.y2, t.x1, t.y1)
	d2 := orient(s.x1, s.y1, s.x2, s.y2, t.x2, t.y2)
	d3 := orient(t.x1, t.y1, t.x2, t.y2, s.x1, s.y1)
	d4 := orient(t.x1, t.y1, t.x2, t.y2, s.x2, s.y2)
	return d1*d2 < 0 && d3*d4 < 0
}
