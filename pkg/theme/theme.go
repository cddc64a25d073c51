// Package theme groups the items of one category into named thematic clusters.
//
// Themes are discovered from keyword statistics alone: every item's text is
// tokenized, tokens are ranked by how well they split the category (present
// in some items but not all), and each item joins the highest-ranked token it
// contains. Near-duplicate themes are merged and oversized themes are split
// on a secondary keyword. Discovery is deterministic.
//
// Items that match no theme get the label [Unassigned].
package theme

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tokens"
	"github.com/matzehuels/skilltree/pkg/tree"
)

// Unassigned labels items that match no discovered theme.
const Unassigned = "_unassigned"

// Defaults for [Options].
const (
	DefaultTopN         = 8
	DefaultMergeOverlap = 0.7
	DefaultSplitShare   = 0.4
)

// Options tunes theme discovery.
type Options struct {
	// TopN is the number of candidate keywords kept.
	TopN int `json:"top_n" toml:"top_n" validate:"gte=0,lte=64"`

	// MergeOverlap is the member fraction above which two themes merge.
	MergeOverlap float64 `json:"merge_overlap" toml:"merge_overlap" validate:"gte=0,lte=1"`

	// SplitShare is the share of all items above which a theme is split.
	// Values of 1 or more disable splitting.
	SplitShare float64 `json:"split_share" toml:"split_share" validate:"gte=0"`

	// StopWords replaces the default stop list when non-nil.
	StopWords tokens.Set `json:"-" toml:"-"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.MergeOverlap <= 0 {
		o.MergeOverlap = DefaultMergeOverlap
	}
	if o.SplitShare <= 0 {
		o.SplitShare = DefaultSplitShare
	}
}

// Theme is a label and the IDs of its member items, in input order.
type Theme struct {
	Label   string   `json:"label"`
	Members []string `json:"members"`
}

// Assignment is the result of [Discover]. Themes are in rank order with
// [Unassigned] last when present.
type Assignment struct {
	Labels map[string]string `json:"labels"`
	Themes []Theme           `json:"themes"`
}

// Label returns the theme of an item, or [Unassigned].
func (a Assignment) Label(id string) string {
	if l, ok := a.Labels[id]; ok {
		return l
	}
	return Unassigned
}

// Rank returns the position of a label in Themes, or len(Themes) if absent.
func (a Assignment) Rank(label string) int {
	for i, th := range a.Themes {
		if th.Label == label {
			return i
		}
	}
	return len(a.Themes)
}

type doc struct {
	id   string
	toks []string // sorted, unique
}

func (d doc) has(tok string) bool {
	_, ok := slices.BinarySearch(d.toks, tok)
	return ok
}

func (d doc) matches(label string) bool {
	if d.has(label) {
		return true
	}
	for _, t := range d.toks {
		if strings.Contains(t, label) {
			return true
		}
	}
	return false
}

type ranked struct {
	tok   string
	df    int
	score float64
}

const scoreEpsilon = 1e-9

// rankTokens scores tokens by df*(1-df/total), highest first, ties by
// document frequency and then token.
func rankTokens(docs []doc, exclude func(string) bool) []ranked {
	df := map[string]int{}
	for _, d := range docs {
		for _, t := range d.toks {
			if exclude == nil || !exclude(t) {
				df[t]++
			}
		}
	}
	total := float64(len(docs))
	out := make([]ranked, 0, len(df))
	for t, n := range df {
		s := float64(n) * (1 - float64(n)/total)
		if s <= 0 {
			continue
		}
		out = append(out, ranked{tok: t, df: n, score: s})
	}
	slices.SortFunc(out, func(a, b ranked) int {
		if math.Abs(a.score-b.score) > scoreEpsilon {
			return cmp.Compare(b.score, a.score)
		}
		if c := cmp.Compare(b.df, a.df); c != 0 {
			return c
		}
		return cmp.Compare(a.tok, b.tok)
	})
	return out
}

// Discover clusters items into themes.
func Discover(items []item.Item, opts Options) Assignment {
	opts.SetDefaults()

	docs := make([]doc, len(items))
	byID := make(map[string]doc, len(items))
	for i, it := range items {
		docs[i] = doc{id: it.ID, toks: tokens.Unique(it.Text(), opts.StopWords)}
		byID[it.ID] = docs[i]
	}

	top := rankTokens(docs, nil)
	if len(top) > opts.TopN {
		top = top[:opts.TopN]
	}

	themes := make([]Theme, len(top))
	for i, r := range top {
		themes[i].Label = r.tok
	}
	var unassigned []string
	for _, d := range docs {
		if i := assign(d, top); i >= 0 {
			themes[i].Members = append(themes[i].Members, d.id)
		} else {
			unassigned = append(unassigned, d.id)
		}
	}
	themes = slices.DeleteFunc(themes, func(th Theme) bool { return len(th.Members) == 0 })

	themes = merge(themes, byID, opts.MergeOverlap)
	if opts.SplitShare < 1 {
		themes = split(themes, byID, int(float64(len(items))*opts.SplitShare))
	}

	if len(unassigned) > 0 {
		themes = append(themes, Theme{Label: Unassigned, Members: unassigned})
	}
	labels := make(map[string]string, len(items))
	for _, th := range themes {
		for _, id := range th.Members {
			labels[id] = th.Label
		}
	}
	return Assignment{Labels: labels, Themes: themes}
}

// assign returns the index of the earliest-ranked token the document
// contains exactly, else the earliest one it contains as a substring.
func assign(d doc, top []ranked) int {
	for i, r := range top {
		if d.has(r.tok) {
			return i
		}
	}
	for i, r := range top {
		if d.matches(r.tok) {
			return i
		}
	}
	return -1
}

// merge folds later-ranked themes into the first earlier theme they
// duplicate.
func merge(themes []Theme, byID map[string]doc, overlap float64) []Theme {
	var out []Theme
	for _, th := range themes {
		target := -1
		for i := range out {
			if duplicates(out[i], th, byID, overlap) {
				target = i
				break
			}
		}
		if target < 0 {
			out = append(out, Theme{Label: th.Label, Members: slices.Clone(th.Members)})
			continue
		}
		out[target].Members = append(out[target].Members, th.Members...)
	}
	return out
}

func duplicates(a, b Theme, byID map[string]doc, overlap float64) bool {
	if strings.Contains(a.Label, b.Label) || strings.Contains(b.Label, a.Label) {
		return true
	}
	return share(b.Members, a.Label, byID) > overlap || share(a.Members, b.Label, byID) > overlap
}

// share is the fraction of members whose tokens match label.
func share(members []string, label string, byID map[string]doc) float64 {
	if len(members) == 0 {
		return 0
	}
	n := 0
	for _, id := range members {
		if byID[id].matches(label) {
			n++
		}
	}
	return float64(n) / float64(len(members))
}

// split divides every theme with more than limit members on its best
// secondary keyword. The new theme follows its parent in rank order.
func split(themes []Theme, byID map[string]doc, limit int) []Theme {
	labels := map[string]bool{}
	for _, th := range themes {
		labels[th.Label] = true
	}
	var out []Theme
	for _, th := range themes {
		if len(th.Members) <= limit || len(th.Members) < 2 {
			out = append(out, th)
			continue
		}
		docs := make([]doc, len(th.Members))
		for i, id := range th.Members {
			docs[i] = byID[id]
		}
		cands := rankTokens(docs, func(t string) bool {
			return labels[t] || strings.Contains(t, th.Label) || strings.Contains(th.Label, t)
		})
		if len(cands) == 0 {
			out = append(out, th)
			continue
		}
		second := cands[0].tok
		labels[second] = true
		var keep, moved []string
		for _, d := range docs {
			if d.has(second) {
				moved = append(moved, d.id)
			} else {
				keep = append(keep, d.id)
			}
		}
		out = append(out, Theme{Label: th.Label, Members: keep}, Theme{Label: second, Members: moved})
	}
	return out
}

// FixRoots relabels nodes without prerequisites (the root included) with
// the most common theme among their direct children, ties broken by label.
// Nodes without children keep their theme. It returns the number of nodes
// whose theme changed.
func FixRoots(t *tree.Tree) int {
	changed := 0
	for _, n := range t.Nodes() {
		if len(n.Prereqs) > 0 || len(n.Children) == 0 {
			continue
		}
		counts := map[string]int{}
		for _, c := range n.Children {
			if cn := t.Node(c); cn != nil && cn.Theme != "" {
				counts[cn.Theme]++
			}
		}
		best, bestN := "", 0
		for label, k := range counts {
			if k > bestN || k == bestN && label < best {
				best, bestN = label, k
			}
		}
		if best != "" && best != n.Theme {
			n.Theme = best
			changed++
		}
	}
	return changed
}
