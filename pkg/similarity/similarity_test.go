package similarity

import (
	"math"
	"testing"

	"github.com/matzehuels/skilltree/pkg/item"
)

func items(names ...string) []item.Item {
	out := make([]item.Item, len(names))
	for i, n := range names {
		out[i] = item.Item{ID: n, Category: "c", Name: n}
	}
	return out
}

func TestMatrix(t *testing.T) {
	calls := 0
	o := Func(func(a, b item.Item) float64 {
		calls++
		switch {
		case a.ID == "a" && b.ID == "b":
			return 0.25
		case a.ID == "a" && b.ID == "c":
			return 2 // clamped
		}
		return -1 // clamped
	})

	m := NewMatrix(items("a", "b", "c"), o)
	if calls != 3 {
		t.Errorf("oracle calls = %d, want 3", calls)
	}

	tests := []struct {
		a, b string
		want float64
	}{
		{"a", "b", 0.25},
		{"b", "a", 0.25},
		{"a", "c", 1},
		{"b", "c", 0},
		{"a", "a", 1},
		{"a", "zzz", 0},
	}
	for _, tt := range tests {
		if got := m.Score(tt.a, tt.b); got != tt.want {
			t.Errorf("Score(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestNilMatrix(t *testing.T) {
	var m *Matrix
	if m.Score("a", "b") != 0 || m.Len() != 0 {
		t.Error("nil Matrix should score 0 and have length 0")
	}
}

func TestUniform(t *testing.T) {
	u := Uniform(0.5)
	a, b := item.Item{ID: "a"}, item.Item{ID: "b"}
	if got := u.Score(a, b); got != 0.5 {
		t.Errorf("Score() = %v, want 0.5", got)
	}
	if got := u.Score(a, a); got != 1 {
		t.Errorf("Score(self) = %v, want 1", got)
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Fireball", "Fireball", 1},
		{"Fireball", "fireball", 1},
		{"abc", "xyz", 0},
		{"abcd", "abce", 1.0 / 3.0}, // {abc,bcd} vs {abc,bce}
		{"ox", "ox", 1},
		{"", "ox", 0},
	}
	for _, tt := range tests {
		if got := NameSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NameSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTFIDF(t *testing.T) {
	corpus := []item.Item{
		{ID: "1", Name: "Flames", TextFields: []string{"fire burn"}},
		{ID: "2", Name: "Fireball", TextFields: []string{"fire explosion burn"}},
		{ID: "3", Name: "Frostbite", TextFields: []string{"frost cold"}},
	}
	o := NewTFIDF(corpus, TFIDFOptions{NameWeight: -1})

	fire := o.Score(corpus[0], corpus[1])
	cross := o.Score(corpus[0], corpus[2])
	if fire <= cross {
		t.Errorf("Score(fire, fire) = %v, want > Score(fire, frost) = %v", fire, cross)
	}
	if got, want := o.Score(corpus[1], corpus[0]), fire; got != want {
		t.Errorf("Score not symmetric: %v vs %v", got, want)
	}
	if got := o.Score(corpus[2], corpus[2]); got != 1 {
		t.Errorf("Score(self) = %v, want 1", got)
	}
	for _, s := range []float64{fire, cross} {
		if s < 0 || s > 1 {
			t.Errorf("score %v outside [0,1]", s)
		}
	}
}

func TestTFIDFOutsideCorpus(t *testing.T) {
	o := NewTFIDF(nil, TFIDFOptions{})
	a := item.Item{ID: "x", Name: "Sparks"}
	b := item.Item{ID: "y", Name: "Sparks"}
	if got := o.Score(a, b); got != 1 {
		t.Errorf("Score() = %v, want 1 from identical names", got)
	}
}
