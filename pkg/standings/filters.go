package standings

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlacementCandidate is a token that reads as a finishing rank 1..8.
type PlacementCandidate struct {
	Token
	Placement int
}

// NameCandidate is a token that may hold a player name. Text is the token text
// with any rank glyph prefix removed.
type NameCandidate struct {
	Token
	Text string
}

// cleanText drops garbage glyphs, collapses whitespace and upper-cases.
func cleanText(s string) string {
	s = garbageRE.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToUpper(s)
}

// IsDenied reports whether text is UI chrome or a rank-tier word. A phrase
// made only of denied words ("FINAL STANDINGS") is denied as well.
func IsDenied(text string) bool {
	key := strings.ToLower(strings.Trim(cleanText(text), ".:;,-_ "))
	if key == "" {
		return false
	}
	if _, ok := denylist[key]; ok {
		return true
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".:;,-_", r)
	})
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if _, ok := denylist[w]; !ok {
			return false
		}
	}
	return true
}

// ParsePlacement parses the placement encodings 1, #1, P1 and 1ST..8TH.
func ParsePlacement(text string) (int, bool) {
	c := strings.TrimRight(cleanText(text), ".:")
	m := placementRE.FindStringSubmatch(c)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g != "" {
			return int(g[0] - '0'), true
		}
	}
	return 0, false
}

// IsPlacement reports whether t is a placement number in the left margin.
func IsPlacement(t Token, cfg Config) bool {
	_, ok := ParsePlacement(t.Text)
	return ok && t.X < cfg.PlacementMaxX
}

// IsName reports whether t qualifies as a player name candidate once a
// leading rank glyph is removed.
func IsName(t Token, cfg Config) bool {
	_, ok := nameText(t, cfg)
	return ok
}

// nameText returns t's text without a rank glyph prefix when it is a name
// that also survives normalization.
func nameText(t Token, cfg Config) (string, bool) {
	text := stripRankPrefix(t.Text)
	if !isNameText(text, t, cfg) {
		return "", false
	}
	if _, ok := Normalize(text); !ok {
		return "", false
	}
	return text, true
}

// isNameText applies the name rules to text using t's position and confidence.
func isNameText(text string, t Token, cfg Config) bool {
	c := cleanText(text)
	n := utf8.RuneCountInString(c)
	if n < cfg.MinNameLength || n > cfg.MaxNameLength {
		return false
	}
	if countLetters(c) < cfg.MinNameLetters {
		return false
	}
	if t.Confidence <= cfg.MinNameConfidence {
		return false
	}
	if t.X < cfg.NameMinX || t.X > cfg.NameMaxX {
		return false
	}
	if scoreArtifactRE.MatchString(c) || pointsArtifactRE.MatchString(c) {
		return false
	}
	if isRankGlyph(c) {
		return false
	}
	return !IsDenied(c)
}

// isRankGlyph reports whether text is a bare rank-tier abbreviation.
func isRankGlyph(text string) bool {
	return rankGlyphRE.MatchString(cleanText(text))
}

// stripRankPrefix removes a leading rank glyph ("E2 FFOXFACE" -> "FFOXFACE").
// Text without a prefix is returned unchanged.
func stripRankPrefix(text string) string {
	m := rankPrefixRE.FindStringSubmatch(cleanText(text))
	if m == nil {
		return text
	}
	return m[1]
}

func hasRankPrefix(text string) bool {
	return rankPrefixRE.MatchString(cleanText(text))
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func placementCandidates(tokens []Token, cfg Config) []PlacementCandidate {
	var out []PlacementCandidate
	for _, t := range tokens {
		if t.X >= cfg.PlacementMaxX {
			continue
		}
		if p, ok := ParsePlacement(t.Text); ok {
			out = append(out, PlacementCandidate{Token: t, Placement: p})
		}
	}
	return out
}

func nameCandidates(tokens []Token, cfg Config) []NameCandidate {
	var out []NameCandidate
	for _, t := range tokens {
		if text, ok := nameText(t, cfg); ok {
			out = append(out, NameCandidate{Token: t, Text: text})
		}
	}
	return out
}
