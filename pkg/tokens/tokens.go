// Package tokens splits item text into lowercase keyword tokens.
//
// Tokens are maximal runs of [a-z0-9] longer than two characters, with the
// stop words from [StopWords] removed. Both theme discovery and the default
// similarity oracle use the same tokenizer so their notion of a keyword agrees.
package tokens

import (
	"slices"
	"strings"
)

// MinLength is the shortest token kept.
const MinLength = 3

// StopWords are generic words that appear across all categories and carry
// no thematic signal.
var StopWords = []string{
	// Generic effect words
	"spell", "magic", "magical", "target", "targets", "effect", "effects",
	"damage", "point", "points", "second", "seconds", "per", "for", "the",
	"does", "causes", "cast", "caster", "casting", "level", "levels",
	"health", "magicka", "stamina", "drain", "drains",
	// Description template fragments
	"deals", "deal", "dur", "duration", "mag", "magnitude",
	"nearby", "enemies", "enemy", "increased", "increases", "increase",
	"decreased", "decreases", "decrease", "reduces", "reduced", "reduce",
	"restores", "restore", "restored", "absorb", "absorbs", "absorbed",
	"extra", "takes", "take", "time", "over", "while", "also",
	"resistance", "chance", "once", "each", "within", "range",
	"stronger", "powerful", "greater", "lesser", "more", "less",
	// Tier names
	"novice", "apprentice", "adept", "expert", "master",
	// Articles and prepositions
	"to", "a", "an", "of", "in", "on", "at", "is", "are", "be", "with",
	"that", "this", "their", "your", "and", "or", "but", "not", "all",
}

// Set is a lookup set of words.
type Set map[string]struct{}

// NewSet builds a set from words, lowercased.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Has reports whether w is in the set.
func (s Set) Has(w string) bool {
	_, ok := s[w]
	return ok
}

// DefaultStopSet is [StopWords] as a [Set].
var DefaultStopSet = NewSet(StopWords...)

// Split returns the tokens of text in order, including duplicates.
// A nil stop set means [DefaultStopSet].
func Split(text string, stop Set) []string {
	if stop == nil {
		stop = DefaultStopSet
	}
	var out []string
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	for _, f := range fields {
		if len(f) < MinLength || stop.Has(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Unique returns the distinct tokens of text, sorted.
func Unique(text string, stop Set) []string {
	toks := Split(text, stop)
	slices.Sort(toks)
	return slices.Compact(toks)
}
