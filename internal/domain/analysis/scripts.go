package analysis

import (
	"strings"
	"unicode"
)

// scriptFamily buckets code points into the script groups relevant for
// homograph detection. Digits, punctuation, and other shared characters are
// Common and never count toward a mixed-script finding.
type scriptFamily int

const (
	scriptCommon scriptFamily = iota
	scriptLatin
	scriptCyrillic
	scriptGreek
	scriptArabic
	scriptHebrew
	scriptHan
	scriptKana
	scriptHangul
	scriptOther
)

var scriptFamilyNames = map[scriptFamily]string{
	scriptLatin:    "Latin",
	scriptCyrillic: "Cyrillic",
	scriptGreek:    "Greek",
	scriptArabic:   "Arabic",
	scriptHebrew:   "Hebrew",
	scriptHan:      "Han",
	scriptKana:     "Kana",
	scriptHangul:   "Hangul",
	scriptOther:    "Other",
}

func classifyScript(r rune) scriptFamily {
	switch {
	case r < 0x80:
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return scriptLatin
		}
		return scriptCommon
	case unicode.Is(unicode.Latin, r):
		return scriptLatin
	case unicode.Is(unicode.Cyrillic, r):
		return scriptCyrillic
	case unicode.Is(unicode.Greek, r):
		return scriptGreek
	case unicode.Is(unicode.Arabic, r):
		return scriptArabic
	case unicode.Is(unicode.Hebrew, r):
		return scriptHebrew
	case unicode.Is(unicode.Han, r):
		return scriptHan
	case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
		return scriptKana
	case unicode.Is(unicode.Hangul, r):
		return scriptHangul
	case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSpace(r):
		return scriptCommon
	default:
		return scriptOther
	}
}

// detectMixedScripts reports whether any single host label mixes two or
// more non-Common script families, along with the family names found in
// the first such label, in order of appearance. A label legitimately uses
// one script; a second one mixed in is the signature of a homograph
// attack. Two carve-outs keep legitimate hostnames quiet: scripts are
// judged per label, so a CJK name under an ASCII TLD is not a mix, and
// Han alongside Kana (Japanese) or Hangul (Korean) is ordinary
// orthography.
func detectMixedScripts(s string) (bool, []string) {
	for _, label := range strings.Split(s, ".") {
		seen := make(map[scriptFamily]bool)
		var order []scriptFamily
		for _, r := range label {
			fam := classifyScript(r)
			if fam == scriptCommon || seen[fam] {
				continue
			}
			seen[fam] = true
			order = append(order, fam)
		}
		if seen[scriptHan] && (seen[scriptKana] || seen[scriptHangul]) {
			delete(seen, scriptHan)
		}
		var names []string
		for _, fam := range order {
			if seen[fam] {
				names = append(names, scriptFamilyNames[fam])
			}
		}
		if len(names) >= 2 {
			return true, names
		}
	}
	return false, nil
}
