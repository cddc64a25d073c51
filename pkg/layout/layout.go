package layout

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/grid"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tree"
)

// PlacedNode is one node at its final coordinate. ParentID is the edge that
// is drawn, which may differ from the logical tree parent.
type PlacedNode struct {
	ID       string    `json:"id" bson:"id"`
	X        float64   `json:"x" bson:"x"`
	Y        float64   `json:"y" bson:"y"`
	ParentID string    `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Tier     item.Tier `json:"tier" bson:"tier"`
	Theme    string    `json:"theme,omitempty" bson:"theme,omitempty"`
	IsRoot   bool      `json:"is_root,omitempty" bson:"is_root,omitempty"`
}

// Placement is the result of [Layout]. Nodes are sorted by ID.
type Placement struct {
	Nodes      []PlacedNode `json:"nodes" bson:"nodes"`
	Unplaced   []string     `json:"unplaced,omitempty" bson:"unplaced,omitempty"`
	Warnings   []string     `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Deferred   int          `json:"deferred" bson:"deferred"`
	Forced     int          `json:"forced" bson:"forced"`
	GridPoints int          `json:"grid_points" bson:"grid_points"`
	Metrics    Metrics      `json:"metrics" bson:"metrics"`
}

// Err returns a [errors.GridExhaustedError] when nodes were left unplaced.
func (p *Placement) Err(category string) error {
	if len(p.Unplaced) == 0 {
		return nil
	}
	return &errors.GridExhaustedError{Category: category, Unplaced: p.Unplaced}
}

type engine struct {
	t   *tree.Tree
	g   *grid.Graph
	o   *Options
	w   *Weights
	rng *rand.Rand

	ox, oy float64
	radius float64

	occupied []bool
	at       map[string]int
	drawn    map[string]string
	childPts map[string][]int
	order    []string
	group    map[string]int
	groupPt  []int
	groupDir [][2]float64
	themeOff map[string]float64
	deferred []string
	pl       Placement
}

// Layout places every node of t on g. The graph may grow during force
// placement. The same tree, graph, options and generator state always give
// the same placement.
func Layout(t *tree.Tree, g *grid.Graph, opts Options, rng *rand.Rand) Placement {
	opts.setDefaults()
	e := &engine{
		t:        t,
		g:        g,
		o:        &opts,
		w:        opts.Weights,
		rng:      rng,
		ox:       opts.Origin[0],
		oy:       opts.Origin[1],
		at:       make(map[string]int, t.Len()),
		drawn:    make(map[string]string, t.Len()),
		childPts: make(map[string][]int),
		group:    make(map[string]int, t.Len()),
		themeOff: make(map[string]float64),
	}
	if t.Node(t.Root()) == nil {
		e.pl.Unplaced = t.IDs()
		slices.Sort(e.pl.Unplaced)
		e.warn("tree %q has no root", t.Category)
		return e.pl
	}

	e.seed()
	e.waves()
	e.retry()
	e.force()
	return e.finish()
}

func (e *engine) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.pl.Warnings = append(e.pl.Warnings, msg)
	e.o.Logger.Warn(msg, "category", e.t.Category)
}

func (e *engine) free(i int) bool { return !e.occupied[i] }

func (e *engine) place(id string, pt int, parent string) {
	e.occupied[pt] = true
	e.at[id] = pt
	e.drawn[id] = parent
	if parent != "" {
		e.childPts[parent] = append(e.childPts[parent], pt)
	}
	e.order = append(e.order, id)
}

func (e *engine) placed(id string) bool {
	_, ok := e.at[id]
	return ok
}

// pct returns the radius of point i as a percentage of the grid radius.
func (e *engine) pct(i int) float64 {
	if e.radius == 0 {
		return 0
	}
	p := e.g.Points[i]
	return grid.Dist(e.ox, e.oy, p.X, p.Y) / e.radius * 100
}

func (e *engine) zone(n *tree.Node) (Zone, bool) {
	z, ok := e.o.TierZones[n.Tier]
	return z, ok
}

func unit(x, y float64) [2]float64 {
	d := math.Hypot(x, y)
	if d == 0 {
		return [2]float64{}
	}
	return [2]float64{x / d, y / d}
}

// ============================================================================
// Phase 1: seed
// ============================================================================

func (e *engine) seed() {
	anchors := e.o.Anchors
	if len(anchors) == 0 {
		anchors = []grid.Anchor{{X: e.ox, Y: e.oy, Category: e.t.Category}}
	}
	if e.g.Len() == 0 {
		e.g.Extend([]grid.Point{{X: anchors[0].X, Y: anchors[0].Y}})
		e.warn("empty grid, seeded one point at the primary anchor")
	}
	e.occupied = make([]bool, e.g.Len())
	e.radius = grid.Radius(e.g.Points, e.ox, e.oy)

	root := e.t.Root()
	rootPt := e.g.Nearest(anchors[0].X, anchors[0].Y, e.free)
	e.place(root, rootPt, "")

	e.groupPt = []int{rootPt}
	e.groupDir = [][2]float64{unit(anchors[0].X-e.ox, anchors[0].Y-e.oy)}
	for _, a := range anchors[1:] {
		pt := e.g.Nearest(a.X, a.Y, func(i int) bool { return e.free(i) && !slices.Contains(e.groupPt, i) })
		if pt < 0 {
			continue
		}
		e.groupPt = append(e.groupPt, pt)
		e.groupDir = append(e.groupDir, unit(a.X-e.ox, a.Y-e.oy))
	}

	// first-level subtrees go to the group with the smallest load
	first := slices.Clone(e.t.Node(root).Children)
	size := make(map[string]int, len(first))
	for _, c := range first {
		size[c] = e.t.SubtreeSize(c)
	}
	slices.SortStableFunc(first, func(a, b string) int {
		if c := cmp.Compare(size[b], size[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	load := make([]int, len(e.groupPt))
	for _, c := range first {
		gi := 0
		for k := range load {
			if load[k] < load[gi] {
				gi = k
			}
		}
		load[gi] += size[c]
		e.group[c] = gi
		for _, d := range e.t.Descendants(c) {
			e.group[d] = gi
		}
	}

	if e.o.ThemeMode != ThemeNone {
		e.assignThemeOffsets()
	}
	e.o.Logger.Debug("seeded layout", "category", e.t.Category, "root", root, "groups", len(e.groupPt), "points", e.g.Len())
}

// assignThemeOffsets spreads themes, in breadth-first order of appearance,
// evenly across a fan around the growth direction.
func (e *engine) assignThemeOffsets() {
	var themes []string
	seen := map[string]bool{}
	for _, level := range e.levels() {
		for _, id := range level {
			th := e.t.Node(id).Theme
			if th != "" && !seen[th] {
				seen[th] = true
				themes = append(themes, th)
			}
		}
	}
	fan := (90 + 0.9*e.o.Spread) * math.Pi / 180
	for i, th := range themes {
		e.themeOff[th] = -fan/2 + fan*(float64(i)+0.5)/float64(len(themes))
	}
}

// levels returns reachable nodes grouped by depth in child order.
func (e *engine) levels() [][]string {
	var out [][]string
	seen := map[string]bool{e.t.Root(): true}
	cur := []string{e.t.Root()}
	for len(cur) > 0 {
		out = append(out, cur)
		var next []string
		for _, id := range cur {
			for _, c := range e.t.Node(id).Children {
				if !seen[c] && e.t.Has(c) {
					seen[c] = true
					next = append(next, c)
				}
			}
		}
		cur = next
	}
	return out
}

// ============================================================================
// Phase 2: wave BFS
// ============================================================================

type hit struct {
	pt   int
	hops int
}

// search returns free points within the hop bound of start in BFS order.
// start itself is included, at hop 0, when free.
func (e *engine) search(start int) []hit {
	var out []hit
	seen := map[int]bool{start: true}
	frontier := []int{start}
	if e.free(start) {
		out = append(out, hit{start, 0})
	}
	for hops := 1; hops <= e.o.HopBound && len(frontier) > 0; hops++ {
		var next []int
		for _, i := range frontier {
			for _, j := range e.g.Neighbors(i) {
				if seen[j] {
					continue
				}
				seen[j] = true
				next = append(next, j)
				if e.free(j) {
					out = append(out, hit{j, hops})
				}
			}
		}
		frontier = next
	}
	return out
}

func (e *engine) crowded(i int) bool {
	n := 0
	for _, j := range e.g.Neighbors(i) {
		if e.occupied[j] {
			n++
		}
	}
	return n > e.o.DensityLimit
}

func (e *engine) waves() {
	levels := e.levels()
	reach := make(map[string]bool, e.t.Len())
	for _, level := range levels {
		for _, id := range level {
			reach[id] = true
		}
	}
	for _, level := range levels[1:] {
		wave := slices.Clone(level)
		e.rng.Shuffle(len(wave), func(i, j int) { wave[i], wave[j] = wave[j], wave[i] })
		for _, id := range wave {
			e.placeWave(e.t.Node(id))
		}
	}
	for _, id := range e.t.IDs() {
		if !reach[id] {
			e.deferred = append(e.deferred, id)
		}
	}
	e.pl.Deferred = len(e.deferred)
	e.o.Logger.Debug("wave phase done", "category", e.t.Category, "placed", len(e.order), "deferred", len(e.deferred))
}

func (e *engine) placeWave(n *tree.Node) {
	if !e.placed(n.Parent) {
		e.deferred = append(e.deferred, n.ID)
		return
	}
	pp := e.at[n.Parent]
	start := pp
	if gi := e.group[n.ID]; n.Parent == e.t.Root() && gi > 0 {
		start = e.groupPt[gi]
	}

	best, bestScore := -1, math.Inf(-1)
	for _, h := range e.search(start) {
		if e.crowded(h.pt) {
			continue
		}
		if s := e.waveScore(n, pp, h); s > bestScore {
			best, bestScore = h.pt, s
		}
	}
	if best < 0 {
		e.deferred = append(e.deferred, n.ID)
		return
	}
	if z, ok := e.zone(n); ok && e.pct(best) < z.Min-e.o.FloorSlack {
		e.deferred = append(e.deferred, n.ID)
		return
	}
	e.place(n.ID, best, n.Parent)
}

func (e *engine) direction(n *tree.Node, from grid.Point) [2]float64 {
	if d := e.groupDir[e.group[n.ID]]; d != ([2]float64{}) {
		return d
	}
	return unit(from.X-e.ox, from.Y-e.oy)
}

func (e *engine) waveScore(n *tree.Node, parentPt int, h hit) float64 {
	p, q := e.g.Points[parentPt], e.g.Points[h.pt]
	vx, vy := q.X-p.X, q.Y-p.Y
	vlen := math.Hypot(vx, vy)

	s := -e.w.Hop * float64(h.hops)
	if vlen > 0 {
		dir := e.direction(n, p)
		cos := (vx*dir[0] + vy*dir[1]) / vlen
		s += e.w.Direction * cos * (1 - e.o.Spread/100)

		gain := (grid.Dist(e.ox, e.oy, q.X, q.Y) - grid.Dist(e.ox, e.oy, p.X, p.Y)) / vlen
		s += e.w.Radial * gain * e.o.RadialBias / 100
	}
	if z, ok := e.zone(n); ok {
		s -= e.w.Zone * z.Outside(e.pct(h.pt))
	}
	if e.o.ThemeMode == ThemeLayered || e.o.ThemeMode == ThemeSmart {
		s += e.themeScore(n, q)
	}
	if e.o.ThemeMode == ThemeSmart && vlen > 0 {
		s -= e.siblingPenalty(n.Parent, p, vx, vy)
	}
	return s
}

// themeScore rewards points whose bearing from the group origin matches the
// theme's offset from the growth direction.
func (e *engine) themeScore(n *tree.Node, q grid.Point) float64 {
	off, ok := e.themeOff[n.Theme]
	if !ok {
		return 0
	}
	gi := e.group[n.ID]
	base := e.g.Points[e.groupPt[gi]]
	dx, dy := q.X-base.X, q.Y-base.Y
	if dx == 0 && dy == 0 {
		return 0
	}
	dir := e.groupDir[gi]
	if dir == ([2]float64{}) {
		dir = unit(base.X-e.ox, base.Y-e.oy)
		if dir == ([2]float64{}) {
			dir = [2]float64{0, 1}
		}
	}
	phi := math.Atan2(dy, dx) - math.Atan2(dir[1], dir[0])
	return e.w.ThemeSector * max(0, math.Cos(phi-off))
}

func (e *engine) siblingPenalty(parent string, p grid.Point, vx, vy float64) float64 {
	if e.o.BranchSpacingDeg <= 0 {
		return 0
	}
	spacing := e.o.BranchSpacingDeg * math.Pi / 180
	closest := math.Inf(1)
	a := math.Atan2(vy, vx)
	for _, pt := range e.childPts[parent] {
		sib := e.g.Points[pt]
		b := math.Atan2(sib.Y-p.Y, sib.X-p.X)
		diff := math.Abs(math.Remainder(a-b, 2*math.Pi))
		closest = min(closest, diff)
	}
	if closest >= spacing {
		return 0
	}
	return e.w.SiblingSpacing * (1 - closest/spacing)
}

// ============================================================================
// Phase 3: deferred retry
// ============================================================================

func (e *engine) sortDeferred() {
	slices.SortFunc(e.deferred, func(a, b string) int {
		na, nb := e.t.Node(a), e.t.Node(b)
		if c := cmp.Compare(na.Tier, nb.Tier); c != 0 {
			return c
		}
		if c := cmp.Compare(na.Depth, nb.Depth); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

// attachScore scores hanging n off placed node p, ignoring the target point.
func (e *engine) attachScore(n, p *tree.Node) float64 {
	s := 0.0
	if p.ID == n.Parent {
		s += e.w.OriginalParent
	}
	if n.Theme != "" && p.Theme == n.Theme {
		s += e.w.ThemeAffinity
	} else {
		s -= e.w.ThemePenalty
	}
	if p.Tier > n.Tier {
		s -= e.w.TierOrder
	}
	if len(e.childPts[p.ID]) >= e.o.MaxChildren {
		s -= e.w.FanOut
	}
	return s
}

func (e *engine) retry() {
	pass := 0
	for ; pass < e.o.RetryPasses && len(e.deferred) > 0; pass++ {
		e.sortDeferred()
		var still []string
		for _, id := range e.deferred {
			n := e.t.Node(id)
			bestPt, bestParent, bestScore := -1, "", math.Inf(-1)
			for _, pid := range e.order {
				base := e.attachScore(n, e.t.Node(pid))
				for _, h := range e.search(e.at[pid]) {
					s := base - e.w.RetryHop*float64(h.hops)
					if z, ok := e.zone(n); ok {
						s -= e.w.ZoneSoft * z.Outside(e.pct(h.pt))
					}
					if s > bestScore {
						bestPt, bestParent, bestScore = h.pt, pid, s
					}
				}
			}
			if bestPt < 0 {
				still = append(still, id)
				continue
			}
			e.place(id, bestPt, bestParent)
		}
		progress := len(e.deferred) - len(still)
		e.deferred = still
		e.o.Logger.Debug("retry pass", "category", e.t.Category, "pass", pass+1, "placed", progress, "left", len(still))
		if progress == 0 {
			break
		}
	}
	if len(e.deferred) > 0 && pass == e.o.RetryPasses {
		e.warn("retry stopped after %d passes with %d nodes deferred", pass, len(e.deferred))
	}
}

// ============================================================================
// Phase 4: force placement
// ============================================================================

func (e *engine) force() {
	e.sortDeferred()
	remaining := e.deferred
	e.deferred = nil
	stalls := 0
	grown := 0
	for len(remaining) > 0 {
		n := e.t.Node(remaining[0])
		target, parent := e.forceTarget(n)
		if pt := e.g.Nearest(target[0], target[1], e.free); pt >= 0 {
			e.place(n.ID, pt, parent)
			e.pl.Forced++
			remaining = remaining[1:]
			stalls = 0
			continue
		}

		before := e.g.Len()
		pts := grid.Densify(e.g.Points, len(remaining), grid.DensifyOptions{
			Threshold: e.g.Threshold,
			Center:    &[2]float64{e.ox, e.oy},
		})
		if len(pts) == before {
			stalls++
			if stalls >= 2 {
				break
			}
			continue
		}
		e.g.Extend(pts[before:])
		for range len(pts) - before {
			e.occupied = append(e.occupied, false)
		}
		grown += len(pts) - before
		stalls = 0
	}
	if grown > 0 {
		e.warn("grid densified by %d points", grown)
	}
	if len(remaining) > 0 {
		e.pl.Unplaced = slices.Clone(remaining)
		slices.Sort(e.pl.Unplaced)
		e.warn("%s", (&errors.GridExhaustedError{Category: e.t.Category, Unplaced: e.pl.Unplaced}).Error())
	}
}

// forceTarget picks the placed node n should hang off and returns its
// coordinate.
func (e *engine) forceTarget(n *tree.Node) ([2]float64, string) {
	best, bestScore := "", math.Inf(-1)
	for _, pid := range e.order {
		if s := e.attachScore(n, e.t.Node(pid)); s > bestScore {
			best, bestScore = pid, s
		}
	}
	if best == "" {
		return [2]float64{e.ox, e.oy}, ""
	}
	p := e.g.Points[e.at[best]]
	return [2]float64{p.X, p.Y}, best
}

func (e *engine) finish() Placement {
	nodes := make([]PlacedNode, 0, len(e.order))
	for _, id := range e.order {
		n := e.t.Node(id)
		p := e.g.Points[e.at[id]]
		nodes = append(nodes, PlacedNode{
			ID:       id,
			X:        p.X,
			Y:        p.Y,
			ParentID: e.drawn[id],
			Tier:     n.Tier,
			Theme:    n.Theme,
			IsRoot:   n.IsRoot,
		})
	}
	slices.SortFunc(nodes, func(a, b PlacedNode) int { return cmp.Compare(a.ID, b.ID) })
	e.pl.Nodes = nodes
	e.pl.GridPoints = e.g.Len()
	e.pl.Metrics = ComputeMetrics(nodes, e.o.TierZones, [2]float64{e.ox, e.oy}, e.radius)
	e.o.Logger.Debug("layout done", "category", e.t.Category, "placed", len(nodes), "unplaced", len(e.pl.Unplaced), "forced", e.pl.Forced)
	return e.pl
}
