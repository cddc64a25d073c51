package builder

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/skilltree/pkg/errors"
	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/similarity"
	"github.com/matzehuels/skilltree/pkg/theme"
	"github.com/matzehuels/skilltree/pkg/tree"
)

// Report describes how one category was built.
type Report struct {
	Category         string   `json:"category"`
	Root             string   `json:"root"`
	Themes           int      `json:"themes"`
	Rescued          int      `json:"rescued"`
	ConvergenceEdges int      `json:"convergence_edges"`
	RepairPasses     int      `json:"repair_passes"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Forest is the result of [Build]: one tree per category that succeeded and
// one error per category that did not.
type Forest struct {
	Trees   map[string]*tree.Tree
	Reports map[string]Report
	Errors  map[string]error
}

// Build builds every category. Failures are recorded per category and never
// abort the others.
func Build(itemsByCategory map[string][]item.Item, opts Options) Forest {
	opts.SetDefaults()
	f := Forest{
		Trees:   make(map[string]*tree.Tree),
		Reports: make(map[string]Report),
		Errors:  make(map[string]error),
	}
	cats := make([]string, 0, len(itemsByCategory))
	for c := range itemsByCategory {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	for _, c := range cats {
		t, r, err := BuildCategory(c, itemsByCategory[c], opts, CategoryRand(opts.Seed, c))
		if err != nil {
			f.Errors[c] = err
			continue
		}
		f.Trees[c] = t
		f.Reports[c] = r
	}
	return f
}

// builder holds the state of one category build.
type builder struct {
	opts   *Options
	w      *Weights
	rng    *rand.Rand
	t      *tree.Tree
	sim    *similarity.Matrix
	themes theme.Assignment
	conn   []string // connected nodes in connection order
	isConn map[string]bool
	report Report
}

// BuildCategory builds the tree of one category. A nil rng means
// [CategoryRand] of opts.Seed.
func BuildCategory(category string, items []item.Item, opts Options, rng *rand.Rand) (*tree.Tree, Report, error) {
	opts.SetDefaults()
	if len(items) == 0 {
		return nil, Report{}, errors.New(errors.ErrCodeEmptyCategory, "category %q has no items", category)
	}
	if rng == nil {
		rng = CategoryRand(opts.Seed, category)
	}

	t, err := tree.NewFromItems(category, items)
	if err != nil {
		return nil, Report{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "category %q", category)
	}

	oracle := opts.Oracle
	if oracle == nil {
		oracle = similarity.NewTFIDF(items, similarity.TFIDFOptions{})
	}
	b := &builder{
		opts:   &opts,
		w:      opts.Weights,
		rng:    rng,
		t:      t,
		sim:    similarity.NewMatrix(items, oracle),
		themes: theme.Discover(items, opts.Themes),
		isConn: make(map[string]bool, len(items)),
		report: Report{Category: category},
	}
	b.report.Themes = len(b.themes.Themes)
	for _, n := range t.Nodes() {
		n.Theme = b.themes.Label(n.ID)
	}

	root, err := b.selectRoot(items)
	if err != nil {
		return nil, Report{}, err
	}
	if err := t.SetRoot(root); err != nil {
		return nil, Report{}, errors.Wrap(errors.ErrCodeInternal, err, "set root")
	}
	b.report.Root = root
	b.connect(root)

	b.roundRobin(items)
	b.rescueOrphans()
	b.converge()
	b.repair()

	theme.FixRoots(t)
	t.RecomputeDepths()
	t.AssignSections(tree.DefaultRootShare, tree.DefaultTrunkShare)

	opts.Logger.Debug("built tree", "category", category, "nodes", t.Len(), "root", root,
		"themes", b.report.Themes, "rescued", b.report.Rescued, "convergence", b.report.ConvergenceEdges)
	return t, b.report, nil
}

func (b *builder) connect(id string) {
	if !b.isConn[id] {
		b.isConn[id] = true
		b.conn = append(b.conn, id)
	}
}

func (b *builder) warn(code errors.Code, format string, args ...any) {
	msg := errors.New(code, format, args...).Error()
	b.report.Warnings = append(b.report.Warnings, msg)
	b.opts.Logger.Warn(fmt.Sprintf(format, args...), "category", b.t.Category, "code", code)
}

// selectRoot applies the override, else picks a lowest-tier item with a
// seeded tie-break over ID-sorted ties.
func (b *builder) selectRoot(items []item.Item) (string, error) {
	if id, ok := b.opts.RootOverrides[b.t.Category]; ok {
		if b.t.Has(id) {
			return id, nil
		}
		b.opts.Logger.Warn("root override not in category", "category", b.t.Category, "root", id)
	}

	var ties []string
	lowest := item.Tier(math.MaxInt)
	for _, it := range items {
		if it.Tier < 0 || it.Tier > b.opts.MaxTier {
			continue
		}
		switch {
		case it.Tier < lowest:
			lowest, ties = it.Tier, []string{it.ID}
		case it.Tier == lowest:
			ties = append(ties, it.ID)
		}
	}
	if len(ties) == 0 {
		return "", errors.New(errors.ErrCodeNoRootCandidate, "category %q has no item with tier in [0, %d]", b.t.Category, b.opts.MaxTier)
	}
	slices.Sort(ties)
	return ties[b.rng.IntN(len(ties))], nil
}

func byTierThenID(a, b item.Item) int {
	if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// roundRobin connects items one per theme per round.
func (b *builder) roundRobin(items []item.Item) {
	byID := make(map[string]item.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	queues := make([][]item.Item, 0, len(b.themes.Themes))
	longest := 0
	for _, th := range b.themes.Themes {
		q := make([]item.Item, 0, len(th.Members))
		for _, id := range th.Members {
			q = append(q, byID[id])
		}
		slices.SortFunc(q, byTierThenID)
		queues = append(queues, q)
		longest = max(longest, len(q))
	}

	for round := 0; round < longest; round++ {
		for _, q := range queues {
			if round >= len(q) || b.isConn[q[round].ID] {
				continue
			}
			n := b.t.Node(q[round].ID)
			if p := b.findParent(n); p != "" {
				if err := b.t.Link(p, n.ID); err == nil {
					b.connect(n.ID)
				}
			}
		}
	}
}

func (b *builder) themeScore(n, c *tree.Node) float64 {
	if sameTheme(n, c) {
		return b.w.SameTheme
	}
	return b.w.CrossTheme
}

// sameTheme reports whether n and c carry the same real theme label.
// Unassigned nodes match nothing.
func sameTheme(n, c *tree.Node) bool {
	return n.Theme != "" && n.Theme != theme.Unassigned && n.Theme == c.Theme
}

func (b *builder) tierBonus(diff int) float64 {
	switch {
	case diff == 0:
		return b.w.TierSame
	case diff == 1:
		return b.w.TierAdjacent
	case diff == 2:
		return b.w.TierSkip
	default:
		return b.w.TierFar
	}
}

// findParent returns the best connected parent for n, or "".
func (b *builder) findParent(n *tree.Node) string {
	best, bestScore := "", math.Inf(-1)
	for _, id := range b.conn {
		c := b.t.Node(id)
		diff := int(n.Tier - c.Tier)
		if diff < 0 || diff > b.opts.MaxTierGap || len(c.Children) >= b.opts.MaxChildren {
			continue
		}
		s := b.themeScore(n, c) +
			b.tierBonus(diff) +
			b.sim.Score(n.ID, c.ID)*b.w.Similarity -
			float64(len(c.Children))/float64(b.opts.MaxChildren)*b.w.Load +
			b.rng.Float64()*b.w.Jitter
		if s > bestScore {
			best, bestScore = id, s
		}
	}
	if best != "" {
		return best
	}

	fewest := math.MaxInt
	for _, id := range b.conn {
		c := b.t.Node(id)
		if c.Tier < n.Tier && len(c.Children) < b.opts.MaxChildren && len(c.Children) < fewest {
			best, fewest = id, len(c.Children)
		}
	}
	return best
}

// rescueOrphans attaches every unconnected item, over capacity if needed.
func (b *builder) rescueOrphans() {
	var orphans []*tree.Node
	for _, n := range b.t.Nodes() {
		if !b.isConn[n.ID] {
			orphans = append(orphans, n)
		}
	}
	slices.SortFunc(orphans, func(x, y *tree.Node) int {
		if c := cmp.Compare(x.Tier, y.Tier); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})

	for _, n := range orphans {
		parent := b.relaxedParent(n)
		if parent == "" {
			parent = b.leastLoadedLower(n)
		}
		if parent == "" {
			parent = b.t.Root()
		}
		if err := b.t.Link(parent, n.ID); err != nil {
			b.opts.Logger.Warn("orphan link failed", "category", b.t.Category, "node", n.ID, "parent", parent, "err", err)
			continue
		}
		b.connect(n.ID)
		b.report.Rescued++
		b.opts.Logger.Debug("rescued orphan", "category", b.t.Category, "node", n.ID, "parent", parent)
	}
}

func (b *builder) relaxedParent(n *tree.Node) string {
	best, bestScore := "", math.Inf(-1)
	for _, id := range b.conn {
		c := b.t.Node(id)
		if len(c.Children) >= b.opts.MaxChildren {
			continue
		}
		s := 0.0
		switch {
		case c.Tier < n.Tier:
			s += b.w.OrphanLowerTier
			if c.Tier == n.Tier-1 {
				s += b.w.OrphanAdjacentTier
			}
		case c.Tier == n.Tier:
			s += b.w.OrphanSameTier
		default:
			s += b.w.OrphanHigherTier
		}
		if sameTheme(n, c) {
			s += b.w.OrphanTheme
		}
		s -= float64(len(c.Children)) * b.w.OrphanPerChild
		if s > bestScore {
			best, bestScore = id, s
		}
	}
	return best
}

func (b *builder) leastLoadedLower(n *tree.Node) string {
	best, fewest := "", math.MaxInt
	for _, id := range b.conn {
		c := b.t.Node(id)
		if c.Tier < n.Tier && len(c.Children) < fewest {
			best, fewest = id, len(c.Children)
		}
	}
	return best
}

type candidate struct {
	id    string
	score float64
}

func sortCandidates(cs []candidate) {
	slices.SortFunc(cs, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
}

// converge adds prerequisite-only edges until the top tiers meet their
// minimums or run out of candidates.
func (b *builder) converge() {
	reach := b.t.Reachable()
	for _, n := range b.t.Nodes() {
		if n.IsRoot {
			continue
		}
		need := b.opts.minPrereqs(n.Tier) - len(n.Prereqs)
		if need <= 0 {
			continue
		}
		var cands []candidate
		for _, c := range b.t.Nodes() {
			if c.ID == n.ID || !reach[c.ID] || c.Tier >= n.Tier || c.Depth >= n.Depth ||
				slices.Contains(n.Prereqs, c.ID) || b.t.IsDescendant(n.ID, c.ID) {
				continue
			}
			s := b.sim.Score(n.ID, c.ID)*b.w.ConvergenceSimilarity +
				max(0, b.w.ConvergenceDepth-float64(n.Depth-c.Depth)*b.w.ConvergenceDepthStep)
			if c.Theme != n.Theme {
				s += b.w.ConvergenceCrossTheme
			}
			cands = append(cands, candidate{c.ID, s})
		}
		sortCandidates(cands)
		for _, c := range cands {
			if need == 0 {
				break
			}
			if err := b.t.AddPrereq(n.ID, c.id); err != nil {
				continue
			}
			need--
			b.report.ConvergenceEdges++
		}
		if need > 0 {
			b.opts.Logger.Debug("convergence short", "category", b.t.Category, "node", n.ID, "missing", need)
		}
	}
}

// repair strips prerequisites that can never unlock and reattaches the
// affected nodes. A node with no unlocked candidate under the fan-out cap
// waits for a later pass. Whatever is still locked at a fixed point or at
// the pass cap is spread over capacity.
func (b *builder) repair() {
	for pass := 1; ; pass++ {
		unlocked := b.t.SimulateUnlocks()
		locked := b.locked(unlocked)
		if len(locked) == 0 {
			return
		}
		if pass > b.opts.RepairPasses {
			b.warn(errors.ErrCodeIterationLimit, "repair stopped after %d passes with %d locked nodes", b.opts.RepairPasses, len(locked))
			b.spread()
			return
		}
		b.report.RepairPasses = pass

		changed := false
		for _, n := range locked {
			if b.strip(n, unlocked) {
				changed = true
			}
			if n.Parent != "" {
				continue
			}
			if len(n.Prereqs) > 0 {
				if b.promote(n) {
					changed = true
				}
				continue
			}
			if parent := b.repairParent(n, unlocked, true); parent != "" && b.t.Link(parent, n.ID) == nil {
				changed = true
			}
		}
		b.opts.Logger.Debug("repair pass", "category", b.t.Category, "pass", pass, "locked", len(locked))
		if !changed {
			b.opts.Logger.Debug("repair reached a fixed point", "category", b.t.Category, "locked", len(locked))
			b.spread()
			return
		}
	}
}

func (b *builder) locked(unlocked map[string]bool) []*tree.Node {
	var out []*tree.Node
	for _, n := range b.t.Nodes() {
		if !unlocked[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// strip removes every prerequisite of n that is not unlocked.
func (b *builder) strip(n *tree.Node, unlocked map[string]bool) bool {
	stripped := false
	for _, p := range slices.Clone(n.Prereqs) {
		if !unlocked[p] {
			b.t.RemovePrereq(n.ID, p)
			stripped = true
		}
	}
	return stripped
}

// spread unlocks the remaining locked nodes one at a time, lowest tier
// first, ignoring the fan-out cap.
func (b *builder) spread() {
	for range b.t.Len() {
		unlocked := b.t.SimulateUnlocks()
		var n *tree.Node
		for _, c := range b.locked(unlocked) {
			if n == nil || c.Tier < n.Tier {
				n = c
			}
		}
		if n == nil {
			return
		}
		b.strip(n, unlocked)
		if n.Parent != "" {
			continue
		}
		if len(n.Prereqs) > 0 {
			b.promote(n)
			continue
		}
		parent := b.repairParent(n, unlocked, false)
		if parent == "" {
			parent = b.t.Root()
		}
		if err := b.t.Link(parent, n.ID); err != nil {
			b.opts.Logger.Warn("repair link failed", "category", b.t.Category, "node", n.ID, "parent", parent, "err", err)
		}
	}
}

// promote turns one of n's remaining prerequisites into its tree parent,
// preferring one with spare capacity.
func (b *builder) promote(n *tree.Node) bool {
	pick := ""
	for _, p := range n.Prereqs {
		if pn := b.t.Node(p); pn != nil && len(pn.Children) < b.opts.MaxChildren {
			pick = p
			break
		}
	}
	if pick == "" {
		pick = n.Prereqs[0]
	}
	return b.t.Link(pick, n.ID) == nil
}

// repairParent returns the best unlocked candidate for n, or "" when there
// is none. capped skips candidates at the fan-out cap.
func (b *builder) repairParent(n *tree.Node, unlocked map[string]bool, capped bool) string {
	var cands []candidate
	for _, c := range b.t.Nodes() {
		if c.ID == n.ID || !unlocked[c.ID] || (capped && len(c.Children) >= b.opts.MaxChildren) {
			continue
		}
		s := 0.0
		if c.Tier < n.Tier {
			s += b.w.RepairLowerTier
		}
		if c.Tier == n.Tier-1 {
			s += b.w.RepairAdjacentTier
		}
		if sameTheme(n, c) {
			s += b.w.RepairTheme
		}
		s -= float64(len(c.Children)) * b.w.RepairPerChild
		cands = append(cands, candidate{c.ID, s})
	}
	sortCandidates(cands)
	for _, c := range cands {
		if !b.t.Requires(c.id, n.ID) {
			return c.id
		}
	}
	return ""
}
