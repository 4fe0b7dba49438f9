package standings

import (
	"fmt"
	"math"
	"testing"
)

var rosterNames = []string{"LYMERA", "OTTERPOP", "FFOXFACE", "WOLFPACK", "MORGAN", "KINGCRAB", "DEEPESTREGRETS", "SOJU"}

func gridCandidates(n int) ([]PlacementCandidate, []NameCandidate) {
	var ps []PlacementCandidate
	var ns []NameCandidate
	for i := 0; i < n; i++ {
		y := float64(100 + 60*i)
		ps = append(ps, PlacementCandidate{Token: Token{Text: fmt.Sprint(i + 1), X: 40, Y: y, Confidence: 0.9}, Placement: i + 1})
		nt := Token{Text: rosterNames[i], X: float64(300 + 7*(i%3)), Y: y + float64(5*(i%2)), Confidence: 0.9}
		ns = append(ns, NameCandidate{Token: nt, Text: nt.Text})
	}
	return ps, ns
}

func TestMatchByDistanceBijection(t *testing.T) {
	cfg := DefaultConfig()
	ps, ns := gridCandidates(8)
	// feed names in reverse to make sure input order does not matter
	rev := make([]NameCandidate, len(ns))
	for i := range ns {
		rev[len(ns)-1-i] = ns[i]
	}
	matches, warnings := MatchByDistance(ps, rev, cfg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(matches) != 8 {
		t.Fatalf("expected 8 matches got %d", len(matches))
	}
	seenP := map[int]bool{}
	seenN := map[string]bool{}
	for i, m := range matches {
		if m.Placement != i+1 {
			t.Fatalf("matches not ordered by placement: %+v", matches)
		}
		if seenP[m.Placement] || seenN[m.RawName] {
			t.Fatalf("not a bijection: %+v", matches)
		}
		seenP[m.Placement], seenN[m.RawName] = true, true
		if m.RawName != rosterNames[i] {
			t.Fatalf("placement %d matched %q want %q", m.Placement, m.RawName, rosterNames[i])
		}
	}

	// no pairwise swap lowers the total cost
	byName := map[string]NameCandidate{}
	for _, n := range ns {
		byName[n.Text] = n
	}
	cost := func(p PlacementCandidate, n NameCandidate) float64 {
		if math.Abs(n.Y-p.Y) >= cfg.MaxRowGap || n.X < p.X-cfg.NameLeftMargin {
			return math.Inf(1)
		}
		return distance(p, n)
	}
	for i := range matches {
		for j := i + 1; j < len(matches); j++ {
			pi, pj := ps[matches[i].Placement-1], ps[matches[j].Placement-1]
			ni, nj := byName[matches[i].RawName], byName[matches[j].RawName]
			if cost(pi, nj)+cost(pj, ni) < cost(pi, ni)+cost(pj, nj) {
				t.Fatalf("swapping %d and %d lowers the cost", matches[i].Placement, matches[j].Placement)
			}
		}
	}
}

func TestMatchByDistanceUnmatchedAndDuplicate(t *testing.T) {
	cfg := DefaultConfig()
	ps, ns := gridCandidates(3)
	ps = append(ps, PlacementCandidate{Token: Token{Text: "2", X: 40, Y: 400, Confidence: 0.9}, Placement: 2})
	ns[2].Y += 100
	matches, warnings := MatchByDistance(ps, ns, cfg)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches got %+v", matches)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected an unmatched and a duplicate warning, got %v", warnings)
	}
}

func TestMatchByDistanceRejectsLeftNames(t *testing.T) {
	cfg := DefaultConfig()
	ps := []PlacementCandidate{{Token: Token{Text: "1", X: 100, Y: 100, Confidence: 0.9}, Placement: 1}}
	ns := []NameCandidate{{Token: Token{Text: "LYMERA", X: 80, Y: 100, Confidence: 0.9}, Text: "LYMERA"}}
	if matches, _ := MatchByDistance(ps, ns, cfg); len(matches) != 0 {
		t.Fatalf("name left of the placement must not match: %+v", matches)
	}
}

func TestInferByYOrder(t *testing.T) {
	cfg := DefaultConfig()
	for n := 1; n <= 8; n++ {
		_, ns := gridCandidates(n)
		// scramble input order and x positions
		shuffled := make([]NameCandidate, 0, n)
		for i := n - 1; i >= 0; i -= 2 {
			shuffled = append(shuffled, ns[i])
		}
		for i := n - 2; i >= 0; i -= 2 {
			shuffled = append(shuffled, ns[i])
		}
		for i := range shuffled {
			shuffled[i].X = float64(200 + 90*((i*5)%7))
		}
		matches := InferByYOrder(shuffled, cfg)
		if len(matches) != n {
			t.Fatalf("n=%d: expected %d matches got %d", n, n, len(matches))
		}
		for i, m := range matches {
			if m.Placement != i+1 || m.RawName != rosterNames[i] || !m.Inferred {
				t.Fatalf("n=%d: match %d = %+v want placement %d name %s", n, i, m, i+1, rosterNames[i])
			}
		}
	}
}

func TestInferByYOrderCapsAtEight(t *testing.T) {
	cfg := DefaultConfig()
	var ns []NameCandidate
	for i := 0; i < 11; i++ {
		tok := Token{Text: fmt.Sprintf("PLAYER%c", 'A'+i), X: 300, Y: float64(100 + 50*i), Confidence: 0.9}
		ns = append(ns, NameCandidate{Token: tok, Text: tok.Text})
	}
	if got := InferByYOrder(ns, cfg); len(got) != ExpectedPlayers {
		t.Fatalf("expected %d matches got %d", ExpectedPlayers, len(got))
	}
}

func TestBestPerRowExcludesLowConfidence(t *testing.T) {
	cfg := DefaultConfig()
	for low := 0; low <= 8; low++ {
		var dets []Detection
		for i := 0; i < 8; i++ {
			y := float64(100 + 60*i)
			conf := 0.9
			if i < low {
				conf = 0.3
			}
			dets = append(dets, det("E2", 120, y, 0.95), det(rosterNames[i], 300, y, conf))
		}
		got := BestPerRow(ClusterRows(tokensOf(dets...), cfg.RowThreshold), cfg)
		if len(got) != 8-low {
			t.Fatalf("low=%d: expected %d matches got %d", low, 8-low, len(got))
		}
		for i, m := range got {
			if m.Placement != i+1 || m.RawName != rosterNames[low+i] {
				t.Fatalf("low=%d: match %d = %+v", low, i, m)
			}
		}
	}
}

func TestBestPerRowPrefersConfidenceThenLength(t *testing.T) {
	cfg := DefaultConfig()
	rows := ClusterRows(tokensOf(
		det("E2 FFOXFACE", 200, 100, 0.8),
		det("FFOX", 500, 100, 0.95),
		det("LYM", 200, 160, 0.9),
		det("LYMERA", 500, 160, 0.9),
	), cfg.RowThreshold)
	got := BestPerRow(rows, cfg)
	if len(got) != 2 || got[0].RawName != "FFOX" || got[1].RawName != "LYMERA" {
		t.Fatalf("unexpected picks %+v", got)
	}
}
