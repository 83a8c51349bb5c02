package types

import (
	"sort"
	"strconv"
)

// --- Character Set Types ---

// CharSetType is $CharSet<"abc">: a string restricted to the given character
// alphabet. Chars is the canonical form (deduplicated, sorted); Raw keeps the
// literal as written for provenance.
type CharSetType struct {
	Chars  string
	Raw    string
	Reason Reason
}

// NewCharSetType canonicalizes the written literal.
func NewCharSetType(raw string, reason Reason) *CharSetType {
	return &CharSetType{Chars: CanonicalCharSet(raw), Raw: raw, Reason: reason}
}

// CanonicalCharSet deduplicates and sorts the characters of s, so "bab"
// canonicalizes to "ab". Round-tripping the canonical form through $CharSet
// yields an equal type.
func CanonicalCharSet(s string) string {
	runes := []rune(s)
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	out := runes[:0]
	var prev rune
	for i, r := range runes {
		if i == 0 || r != prev {
			out = append(out, r)
		}
		prev = r
	}
	return string(out)
}

func (cs *CharSetType) String() string {
	return "$CharSet<" + strconv.Quote(cs.Chars) + ">"
}
func (cs *CharSetType) typeNode() {}

// Equals compares canonical alphabets; the raw spelling is provenance only.
func (cs *CharSetType) Equals(other Type) bool {
	o, ok := other.(*CharSetType)
	return ok && cs.Chars == o.Chars
}
