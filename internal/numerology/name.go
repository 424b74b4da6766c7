package numerology

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldName strips combining marks and upper-cases s, so "José" becomes
// "JOSE". Transformers are stateful and built per call.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return cases.Upper(language.Und).String(folded)
}

// NormalizeName returns the folded name with runs of whitespace collapsed
// to a single space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(foldName(s)), " ")
}

// nameLetters splits a name into its A-Z letters, vowels and consonants.
type nameLetters struct {
	all        string
	vowels     string
	consonants string
}

func splitLetters(name string) nameLetters {
	var all, vowels, consonants strings.Builder
	for _, r := range foldName(name) {
		if r < 'A' || r > 'Z' {
			continue
		}
		all.WriteRune(r)
		if isVowel(r) {
			vowels.WriteRune(r)
		} else {
			consonants.WriteRune(r)
		}
	}
	return nameLetters{all: all.String(), vowels: vowels.String(), consonants: consonants.String()}
}

func isVowel(r rune) bool {
	switch r {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
