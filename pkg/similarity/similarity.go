// Package similarity scores how related two items are.
//
// An [Oracle] is any symmetric, pure function returning a score in [0, 1].
// Builders never call an oracle in a hot loop directly; they precompute a
// [Matrix] once per category, which is read-only afterwards and safe to
// share between goroutines.
//
// [TFIDF] is the default oracle: cosine similarity of TF-IDF vectors over the
// category's item text, blended with character-trigram similarity of names.
// [Uniform] returns a fixed score and is mostly useful in tests.
package similarity

import (
	"github.com/matzehuels/skilltree/pkg/item"
)

// Oracle scores two items. Implementations must be symmetric and pure.
type Oracle interface {
	Score(a, b item.Item) float64
}

// Func adapts a plain function to [Oracle].
type Func func(a, b item.Item) float64

// Score calls f.
func (f Func) Score(a, b item.Item) float64 { return f(a, b) }

// Uniform scores every distinct pair the same.
type Uniform float64

// Score returns u, or 1 for an item compared with itself.
func (u Uniform) Score(a, b item.Item) float64 {
	if a.ID == b.ID {
		return 1
	}
	return float64(u)
}

// Matrix is a memoized, symmetric score table for one set of items.
// The zero value scores everything 0.
type Matrix struct {
	index map[string]int
	n     int
	vals  []float64
}

// NewMatrix evaluates o once for every unordered pair of items.
// Scores are clamped to [0, 1]; the diagonal is 1.
func NewMatrix(items []item.Item, o Oracle) *Matrix {
	n := len(items)
	m := &Matrix{
		index: make(map[string]int, n),
		n:     n,
		vals:  make([]float64, n*n),
	}
	for i, it := range items {
		m.index[it.ID] = i
	}
	for i := 0; i < n; i++ {
		m.vals[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			s := clamp01(o.Score(items[i], items[j]))
			m.vals[i*n+j] = s
			m.vals[j*n+i] = s
		}
	}
	return m
}

// Score returns the memoized score for two item IDs, or 0 if either is unknown.
func (m *Matrix) Score(a, b string) float64 {
	if m == nil {
		return 0
	}
	i, ok := m.index[a]
	if !ok {
		return 0
	}
	j, ok := m.index[b]
	if !ok {
		return 0
	}
	return m.vals[i*m.n+j]
}

// Len returns the number of items in the matrix.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return m.n
}

func clamp01(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
