package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// confusableToCanonical maps visually confusable code points to the Latin
// characters they imitate. The table is a curated subset of the Unicode
// confusables data, restricted to characters that actually appear in
// observed homograph domains.
var confusableToCanonical = map[rune]string{
	// Cyrillic lowercase lookalikes
	'а': "a",
	'е': "e",
	'ё': "e",
	'о': "o",
	'р': "p",
	'с': "c",
	'у': "y",
	'х': "x",
	'і': "i",
	'ї': "i",
	'ј': "j",
	'ѕ': "s",
	'г': "r",
	'ь': "b",
	'ѡ': "w",
	'ԛ': "q",
	'ԝ': "w",
	'ԁ': "d",
	'һ': "h",

	// Greek lowercase lookalikes
	'α': "a",
	'ε': "e",
	'η': "n",
	'ι': "i",
	'κ': "k",
	'ν': "v",
	'ο': "o",
	'ρ': "p",
	'τ': "t",
	'υ': "u",
	'χ': "x",
	'ω': "w",
	'σ': "o",

	// Latin-adjacent singletons
	'ı': "i", // dotless i
	'ł': "l",
	'ℓ': "l", // script small l
	'ð': "d",
	'þ': "p",
}

// ToSkeleton computes the canonical ASCII-leaning rendering of a string:
// lowercase, combining marks stripped, fullwidth forms narrowed, and
// confusable code points replaced by the Latin characters they imitate.
// Two hosts with equal skeletons but different raw strings are visually
// interchangeable to a user.
//
// The function is deterministic and is used both for risk scoring and for
// confusability equality tests.
func ToSkeleton(s string) string {
	lowered := strings.ToLower(s)
	decomposed := norm.NFD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark from decomposition (é -> e)
		}
		if r >= '！' && r <= '～' {
			// Fullwidth ASCII variants narrow by a fixed offset
			b.WriteRune(r - 0xFEE0)
			continue
		}
		if canonical, ok := confusableToCanonical[r]; ok {
			b.WriteString(canonical)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// AreConfusable reports whether two strings are visually interchangeable:
// their skeletons match while the raw strings differ.
func AreConfusable(a, b string) bool {
	return a != b && ToSkeleton(a) == ToSkeleton(b)
}
