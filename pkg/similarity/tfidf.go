package similarity

import (
	"maps"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/skilltree/pkg/item"
	"github.com/matzehuels/skilltree/pkg/tokens"
)

// DefaultNameWeight is the share of name-trigram similarity in a TF-IDF score.
const DefaultNameWeight = 0.3

// TFIDF is the default [Oracle]. It is built over a fixed corpus; items
// outside the corpus are scored by name similarity only.
type TFIDF struct {
	nameWeight float64
	index      map[string]int
	cosine     *mat.Dense
}

// TFIDFOptions configures [NewTFIDF].
type TFIDFOptions struct {
	// NameWeight blends name-trigram Jaccard similarity into the score:
	// score = (1-w)*cosine + w*jaccard. Negative means [DefaultNameWeight].
	NameWeight float64
	// StopWords overrides [tokens.DefaultStopSet] when non-nil.
	StopWords tokens.Set
}

// NewTFIDF vectorizes items with idf = ln((n+1)/(df+1)) + 1 and precomputes
// all pairwise cosines.
func NewTFIDF(items []item.Item, opts TFIDFOptions) *TFIDF {
	w := opts.NameWeight
	if w < 0 {
		w = DefaultNameWeight
	}
	t := &TFIDF{
		nameWeight: math.Min(w, 1),
		index:      make(map[string]int, len(items)),
	}

	docs := make([][]string, len(items))
	df := make(map[string]int)
	for i, it := range items {
		t.index[it.ID] = i
		docs[i] = tokens.Split(it.Text(), opts.StopWords)
		for _, tok := range uniq(docs[i]) {
			df[tok]++
		}
	}
	vocab := slices.Sorted(maps.Keys(df))
	n, v := len(items), len(vocab)
	if n == 0 || v == 0 {
		return t
	}

	col := make(map[string]int, v)
	for j, tok := range vocab {
		col[tok] = j
	}

	x := mat.NewDense(n, v, nil)
	for i, doc := range docs {
		if len(doc) == 0 {
			continue
		}
		tf := make(map[string]int)
		for _, tok := range doc {
			tf[tok]++
		}
		row := make([]float64, v)
		var norm float64
		for tok, c := range tf {
			idf := math.Log(float64(n+1)/float64(df[tok]+1)) + 1
			val := float64(c) / float64(len(doc)) * idf
			row[col[tok]] = val
			norm += val * val
		}
		norm = math.Sqrt(norm)
		for j := range row {
			row[j] /= norm
		}
		x.SetRow(i, row)
	}

	t.cosine = mat.NewDense(n, n, nil)
	t.cosine.Mul(x, x.T())
	return t
}

// Score implements [Oracle].
func (t *TFIDF) Score(a, b item.Item) float64 {
	if a.ID == b.ID {
		return 1
	}
	name := NameSimilarity(a.Name, b.Name)
	i, okA := t.index[a.ID]
	j, okB := t.index[b.ID]
	if !okA || !okB || t.cosine == nil {
		return clamp01(name)
	}
	return clamp01((1-t.nameWeight)*t.cosine.At(i, j) + t.nameWeight*name)
}

// NameSimilarity is the Jaccard similarity of the lowercase character
// trigrams of two names. Names shorter than three characters are compared
// as a whole.
func NameSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for g := range ta {
		if tb[g] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

func trigrams(s string) map[string]bool {
	r := []rune(strings.ToLower(strings.TrimSpace(s)))
	out := make(map[string]bool)
	if len(r) == 0 {
		return out
	}
	if len(r) < 3 {
		out[string(r)] = true
		return out
	}
	for i := 0; i+3 <= len(r); i++ {
		out[string(r[i:i+3])] = true
	}
	return out
}

func uniq(toks []string) []string {
	c := slices.Clone(toks)
	slices.Sort(c)
	return slices.Compact(c)
}
