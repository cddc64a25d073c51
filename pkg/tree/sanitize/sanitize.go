// Package sanitize repairs built prerequisite trees so they satisfy the
// structural invariants the layout engine relies on.
//
// # Overview
//
// [Sanitize] runs two phases over a [tree.Tree], mutating it in place:
//
//   - Orphan rescue attaches every node that cannot be reached from the root
//     to the best reachable parent.
//   - Fan-out capping pushes excess children down one level under thematic
//     group leaders until no node has more than MaxChildren children.
//
// Both phases move nodes with [tree.Tree.Link], so a node's prerequisite
// count never decreases. Sanitize has no failure mode: when a phase cannot
// make progress it stops and records the condition in the [Report].
package sanitize

import (
	"cmp"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skilltree/pkg/tree"
)

// Defaults for [Options].
const (
	DefaultMaxChildren   = 5
	DefaultMaxIterations = 10
)

// Scoring constants for parent selection.
const (
	themeMatchBonus     = 50.0
	tierDistancePenalty = 5.0
	loadPenalty         = 10.0
	higherTierPenalty   = 1000.0
	fullParentPenalty   = 500.0
)

// Options configures [Sanitize].
type Options struct {
	// MaxChildren caps the number of children per node.
	MaxChildren int

	// MaxIterations bounds the fan-out capping loop.
	MaxIterations int

	// Logger receives warnings and per-pass debug output.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.MaxChildren <= 0 {
		o.MaxChildren = DefaultMaxChildren
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Report summarizes what [Sanitize] changed.
type Report struct {
	Rescued      int  `json:"rescued"`
	Reparented   int  `json:"reparented"`
	Iterations   int  `json:"iterations"`
	LimitReached bool `json:"limit_reached"`
}

// Sanitize rescues unreachable nodes and caps fan-out.
//
// # Orphan Rescue
//
// Unreachable nodes are processed detached nodes first, then by tier and ID.
// Each is linked under the reachable candidate with the highest score:
//
//	score = (same theme ? 50 : 0)
//	      - 5 * |tier difference|
//	      - (children / MaxChildren) * 10
//	      - 1000 if the candidate's tier is higher
//	      - 500 if the candidate is at the cap
//
// Candidates whose link would create a prerequisite cycle are skipped.
//
// # Fan-out Capping
//
// Each iteration walks reachable nodes breadth-first. A node with too many
// children has them grouped by theme; the group leader (lowest tier, then
// fewest children, then ID) stays and the other members move under it. If
// the leaders alone still exceed the cap, the smallest groups are folded into
// the best-scoring remaining leader whose tier does not exceed theirs.
// The loop stops when no node is over the cap or after MaxIterations.
func Sanitize(t *tree.Tree, opts Options) Report {
	opts.setDefaults()
	var r Report
	if t.Node(t.Root()) == nil {
		return r
	}

	r.Rescued = rescue(t, opts)

	for r.Iterations < opts.MaxIterations {
		over := overCapacity(t, opts.MaxChildren)
		if len(over) == 0 {
			break
		}
		r.Iterations++
		moved := 0
		for _, id := range over {
			moved += capFanOut(t, id, opts.MaxChildren)
		}
		r.Reparented += moved
		opts.Logger.Debug("fan-out pass", "category", t.Category, "iteration", r.Iterations, "over", len(over), "moved", moved)
		if moved == 0 {
			break
		}
	}

	if rest := overCapacity(t, opts.MaxChildren); len(rest) > 0 {
		r.LimitReached = true
		opts.Logger.Warn("fan-out cap not reached", "category", t.Category, "iterations", r.Iterations, "nodes", len(rest))
	}
	t.RecomputeDepths()
	return r
}

func score(n, c *tree.Node, maxChildren int) float64 {
	s := 0.0
	if n.Theme != "" && n.Theme == c.Theme {
		s += themeMatchBonus
	}
	s -= tierDistancePenalty * math.Abs(float64(n.Tier-c.Tier))
	s -= float64(len(c.Children)) / float64(maxChildren) * loadPenalty
	if c.Tier > n.Tier {
		s -= higherTierPenalty
	}
	if len(c.Children) >= maxChildren {
		s -= fullParentPenalty
	}
	return s
}

func rescue(t *tree.Tree, opts Options) int {
	var pending []*tree.Node
	for _, id := range t.Unreachable() {
		pending = append(pending, t.Node(id))
	}
	slices.SortStableFunc(pending, func(a, b *tree.Node) int {
		ad, bd := !t.Has(a.Parent), !t.Has(b.Parent)
		if ad != bd {
			if ad {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	rescued := 0
	for _, n := range pending {
		reach := t.Reachable()
		if reach[n.ID] {
			continue
		}
		var cands []*tree.Node
		for _, id := range t.IDs() {
			if reach[id] {
				cands = append(cands, t.Node(id))
			}
		}
		slices.SortStableFunc(cands, func(a, b *tree.Node) int {
			if c := cmp.Compare(score(n, b, opts.MaxChildren), score(n, a, opts.MaxChildren)); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
		linked := false
		for _, c := range cands {
			if err := t.Link(c.ID, n.ID); err == nil {
				opts.Logger.Debug("rescued node", "category", t.Category, "node", n.ID, "parent", c.ID)
				linked = true
				break
			}
		}
		if linked {
			rescued++
		} else {
			opts.Logger.Warn("could not rescue node", "category", t.Category, "node", n.ID)
		}
	}
	return rescued
}

// overCapacity returns reachable nodes with too many children in BFS order.
func overCapacity(t *tree.Tree, maxChildren int) []string {
	var out []string
	seen := map[string]bool{}
	queue := []string{t.Root()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		n := t.Node(id)
		if n == nil {
			continue
		}
		if len(n.Children) > maxChildren {
			out = append(out, id)
		}
		queue = append(queue, n.Children...)
	}
	return out
}

type group struct {
	theme   string
	leader  *tree.Node
	members []string
}

// capFanOut reduces the children of id and returns how many nodes moved.
func capFanOut(t *tree.Tree, id string, maxChildren int) int {
	p := t.Node(id)
	if len(p.Children) <= maxChildren {
		return 0
	}

	var groups []*group
	byTheme := map[string]*group{}
	for _, c := range p.Children {
		cn := t.Node(c)
		if cn == nil {
			continue
		}
		g := byTheme[cn.Theme]
		if g == nil {
			g = &group{theme: cn.Theme}
			byTheme[cn.Theme] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, c)
		if g.leader == nil || leads(cn, g.leader) {
			g.leader = cn
		}
	}

	moved := 0
	for _, g := range groups {
		for _, m := range g.members {
			if m == g.leader.ID {
				continue
			}
			if err := t.Link(g.leader.ID, m); err == nil {
				moved++
			}
		}
	}

	for len(p.Children) > maxChildren {
		slices.SortStableFunc(groups, func(a, b *group) int {
			if c := cmp.Compare(len(a.members), len(b.members)); c != 0 {
				return c
			}
			return cmp.Compare(a.theme, b.theme)
		})
		merged := false
		for i, g := range groups {
			target := bestLeader(groups, i, maxChildren)
			if target == nil {
				continue
			}
			if err := t.Link(target.leader.ID, g.leader.ID); err != nil {
				continue
			}
			moved++
			target.members = append(target.members, g.members...)
			groups = slices.Delete(groups, i, i+1)
			merged = true
			break
		}
		if !merged {
			break
		}
	}
	return moved
}

func leads(a, b *tree.Node) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	if len(a.Children) != len(b.Children) {
		return len(a.Children) < len(b.Children)
	}
	return a.ID < b.ID
}

// bestLeader picks the leader that groups[i] folds into, or nil.
func bestLeader(groups []*group, i, maxChildren int) *group {
	src := groups[i].leader
	var best *group
	bestScore := math.Inf(-1)
	for j, g := range groups {
		if j == i || g.leader.Tier > src.Tier {
			continue
		}
		s := score(src, g.leader, maxChildren)
		if best == nil || s > bestScore || s == bestScore && g.leader.ID < best.leader.ID {
			best, bestScore = g, s
		}
	}
	return best
}
