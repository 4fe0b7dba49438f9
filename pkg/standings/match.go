package standings

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

// Match is one (placement, raw name) pair produced by a matcher, together with
// the tokens it was built from.
type Match struct {
	Placement int
	RawName   string
	Tokens    []Token
	// Inferred is set when the placement comes from screen order rather than a
	// placement token.
	Inferred bool
}

// distance is the placement-to-name cost. Vertical misalignment weighs four
// times as much as horizontal offset.
func distance(p PlacementCandidate, n NameCandidate) float64 {
	return 2*math.Abs(n.Y-p.Y) + 0.5*math.Abs(n.X-p.X)
}

// MatchByDistance pairs each placement, in ascending Y, with the closest
// unused name that is within MaxRowGap vertically and not left of the
// placement beyond NameLeftMargin. Placements without a reachable name and
// repeated placement values are dropped and reported in the returned warnings.
// The result is ordered by placement.
func MatchByDistance(placements []PlacementCandidate, names []NameCandidate, cfg Config) ([]Match, []string) {
	ps := append([]PlacementCandidate(nil), placements...)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Y < ps[j].Y })
	ns := append([]NameCandidate(nil), names...)
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].Y < ns[j].Y })

	var (
		out      []Match
		warnings []string
	)
	used := make([]bool, len(ns))
	taken := map[int]bool{}
	for _, p := range ps {
		if taken[p.Placement] {
			warnings = append(warnings, fmt.Sprintf("duplicate placement %d at y=%.0f ignored", p.Placement, p.Y))
			continue
		}
		best, bestD := -1, math.Inf(1)
		for i, n := range ns {
			if used[i] {
				continue
			}
			if math.Abs(n.Y-p.Y) >= cfg.MaxRowGap {
				continue
			}
			if n.X < p.X-cfg.NameLeftMargin {
				continue
			}
			if d := distance(p, n); d < bestD {
				best, bestD = i, d
			}
		}
		if best < 0 {
			warnings = append(warnings, fmt.Sprintf("placement %d at y=%.0f has no name within %.0fpx", p.Placement, p.Y, cfg.MaxRowGap))
			continue
		}
		used[best] = true
		taken[p.Placement] = true
		out = append(out, Match{
			Placement: p.Placement,
			RawName:   ns[best].Text,
			Tokens:    []Token{p.Token, ns[best].Token},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Placement < out[j].Placement })
	return out, warnings
}

// InferByYOrder assigns placements by screen order: name candidates are
// clustered into rows, each row contributes its best candidate, and the
// placement is the row index + 1, capped at ExpectedPlayers. Candidates are
// expected to come from the name filter, so every row yields a player.
//
// This holds only for screenshot families that always list players top to
// bottom in finishing order.
func InferByYOrder(names []NameCandidate, cfg Config) []Match {
	tokens := make([]Token, len(names))
	for i, n := range names {
		tokens[i] = n.Token
		tokens[i].Text = n.Text
	}
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].Y < tokens[j].Y })
	var out []Match
	for _, r := range ClusterRows(tokens, cfg.RowThreshold) {
		if len(out) == ExpectedPlayers {
			break
		}
		cands := make([]NameCandidate, len(r.Tokens))
		for i, t := range r.Tokens {
			cands[i] = NameCandidate{Token: t, Text: t.Text}
		}
		best, _ := bestCandidate(cands)
		out = append(out, Match{
			Placement: len(out) + 1,
			RawName:   best.Text,
			Tokens:    []Token{best.Token},
			Inferred:  true,
		})
	}
	return out
}

// BestPerRow handles rank-abbreviated layouts: in each row rank glyphs are
// stripped, the remaining name candidate with the highest confidence is kept
// (ties go to the longer cleaned text) and the rest of the row is discarded.
// Rows without a candidate that survives normalization are skipped;
// placements are assigned sequentially, capped at ExpectedPlayers.
func BestPerRow(rows []Row, cfg Config) []Match {
	var out []Match
	for _, r := range rows {
		if len(out) == ExpectedPlayers {
			break
		}
		var cands []NameCandidate
		for _, t := range r.Tokens {
			if isRankGlyph(t.Text) {
				continue
			}
			if text, ok := nameText(t, cfg); ok {
				cands = append(cands, NameCandidate{Token: t, Text: text})
			}
		}
		best, ok := bestCandidate(cands)
		if !ok {
			continue
		}
		out = append(out, Match{
			Placement: len(out) + 1,
			RawName:   best.Text,
			Tokens:    []Token{best.Token},
			Inferred:  true,
		})
	}
	return out
}

// bestCandidate selects the highest-confidence candidate, preferring longer
// cleaned text on ties and the leftmost one after that.
func bestCandidate(cands []NameCandidate) (NameCandidate, bool) {
	if len(cands) == 0 {
		return NameCandidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		replace := false
		if c.Confidence > best.Confidence {
			replace = true
		} else if c.Confidence == best.Confidence {
			if utf8.RuneCountInString(cleanText(c.Text)) > utf8.RuneCountInString(cleanText(best.Text)) {
				replace = true
			}
		}
		if replace {
			best = c
		}
	}
	return best, true
}
