// Package normalize canonicalizes free text for fuzzy key comparisons.
//
// Normalized text is only ever used to decide whether two strings denote the
// same entity. Stored values always keep the operator's original spelling.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// turkishFold maps the Turkish letters that have no decomposition (or whose
// decomposition is not what operators type) to their ASCII equivalents.
var turkishFold = strings.NewReplacer(
	"ı", "i",
	"ğ", "g",
	"ü", "u",
	"ş", "s",
	"ö", "o",
	"ç", "c",
	"â", "a",
	"î", "i",
	"û", "u",
)

// abbreviationPunct is stripped from the end of every word ("A.Ş." -> "a.s").
const abbreviationPunct = ".,;:"

// Normalize lower-cases text using Turkish casing rules, folds Turkish and
// other diacritics to ASCII, collapses whitespace runs and strips trailing
// abbreviation punctuation from each word.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// Turkish casing maps I to ı and İ to i; the fold table then maps ı to i.
	lowered := cases.Lower(language.Turkish).String(text)
	folded := turkishFold.Replace(lowered)

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, folded)
	if err != nil {
		stripped = folded
	}

	words := strings.Fields(stripped)
	out := words[:0]
	for _, w := range words {
		w = strings.TrimRight(w, abbreviationPunct)
		if w != "" {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// Key normalizes an identifier such as a policy or claim number and drops
// everything that is not a letter or digit, so "AB-123 45" and "ab12345" agree.
func Key(text string) string {
	n := Normalize(text)
	var b strings.Builder
	b.Grow(len(n))
	for _, r := range n {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether a and b are the same under normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// ContainsWord reports whether the normalized text contains the normalized
// phrase on word boundaries.
func ContainsWord(text, phrase string) bool {
	t := Normalize(text)
	p := Normalize(phrase)
	if t == "" || p == "" {
		return false
	}
	return strings.Contains(" "+t+" ", " "+p+" ")
}
