package standings

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalizeStages run in this order on every name. Each stage is pure.
var normalizeStages = []func(string) string{
	stripGarbage,
	fixConfusions,
	repairWhitespace,
	splitMergedWords,
	titleCase,
}

// Normalize cleans an OCR name reading. It reports false when what is left is
// UI chrome or has fewer than three letters; such players are dropped.
// Normalize is idempotent.
func Normalize(name string) (string, bool) {
	s := name
	for _, stage := range normalizeStages {
		s = stage(s)
	}
	if s == "" || IsDenied(s) || countLetters(s) < 3 {
		return "", false
	}
	return s, true
}

// stripGarbage removes bracket, pipe and brace misreads plus any leading or
// trailing punctuation.
func stripGarbage(s string) string {
	s = garbageRE.ReplaceAllString(s, "")
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// fixConfusions applies a curated whole-name correction when one is known;
// otherwise it replaces confusable digits that sit between two letters.
// Digits next to other digits or spaces are left alone so numeric names
// survive.
func fixConfusions(s string) string {
	key := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if fixed, ok := knownCorrections[key]; ok {
		return fixed
	}
	rs := []rune(s)
	out := make([]rune, len(rs))
	copy(out, rs)
	for i := 1; i < len(rs)-1; i++ {
		repl, ok := confusions[rs[i]]
		if !ok {
			continue
		}
		if unicode.IsLetter(rs[i-1]) && unicode.IsLetter(rs[i+1]) {
			out[i] = repl
		}
	}
	return string(out)
}

func repairWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitMergedWords expands known concatenations word by word.
func splitMergedWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if split, ok := mergedWords[strings.ToUpper(w)]; ok {
			words[i] = split
		}
	}
	return strings.Join(words, " ")
}

// titleCase capitalizes each word; articles and conjunctions between two
// other words stay lower case.
func titleCase(s string) string {
	// Casers keep state; one per call.
	caser := cases.Title(language.English)
	words := strings.Fields(s)
	for i, w := range words {
		lw := strings.ToLower(w)
		if _, ok := lowerWords[lw]; ok && i > 0 && i < len(words)-1 {
			words[i] = lw
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
