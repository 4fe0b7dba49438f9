package standings

import (
	"strings"
	"testing"
)

func TestParsePlacement(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"#3", 3, true},
		{"P8", 8, true},
		{"1ST", 1, true},
		{"2nd", 2, true},
		{"8TH.", 8, true},
		{"[4]", 4, true},
		{"9", 0, false},
		{"0", 0, false},
		{"10", 0, false},
		{"P9", 0, false},
		{"E2", 0, false},
		{"1/3", 0, false},
		{"LYMERA", 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePlacement(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParsePlacement(%q) = %d,%v want %d,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestIsPlacementLeftMargin(t *testing.T) {
	cfg := DefaultConfig()
	if !IsPlacement(Token{Text: "1", X: 40, Y: 100, Confidence: 0.9}, cfg) {
		t.Fatalf("left-margin digit should be a placement")
	}
	if IsPlacement(Token{Text: "1", X: 500, Y: 100, Confidence: 0.9}, cfg) {
		t.Fatalf("digit inside the name column must not be a placement")
	}
}

func TestIsName(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		text string
		x    float64
		conf float64
		want bool
	}{
		{"LYMERA", 300, 0.9, true},
		{"King of the Hill", 300, 0.9, true},
		{"0/3", 300, 0.99, false},
		{"12 / 40", 300, 0.99, false},
		{"E2", 300, 0.9, false},
		{"M", 300, 0.9, false},
		{"STANDINGS", 300, 0.9, false},
		{"Gold", 300, 0.9, false},
		{"8 PTS", 300, 0.9, false},
		{"E2 LYMERA", 300, 0.9, true},
		{"FINAL STANDINGS", 300, 0.9, false},
		{"G0LD", 300, 0.9, false},
		{"AB1", 300, 0.9, false},
		{"LYMERA", 300, 0.4, false},
		{"LYMERA", 20, 0.9, false},
		{"LYMERA", 5000, 0.9, false},
		{strings.Repeat("A", 31), 300, 0.9, false},
	}
	for _, c := range cases {
		got := IsName(Token{Text: c.text, X: c.x, Y: 100, Confidence: c.conf}, cfg)
		if got != c.want {
			t.Fatalf("IsName(%q, x=%.0f, conf=%.2f) = %v want %v", c.text, c.x, c.conf, got, c.want)
		}
	}
}

func TestIsDenied(t *testing.T) {
	for _, s := range []string{"Standings:", "  POINTS ", "[Lobby]", "challenger", "FINAL STANDINGS", "Match History", "standings - master"} {
		if !IsDenied(s) {
			t.Fatalf("expected %q to be denied", s)
		}
	}
	for _, s := range []string{"Lymera", "", "Master Yi", "Final Boss"} {
		if IsDenied(s) {
			t.Fatalf("expected %q to pass the denylist", s)
		}
	}
}

func TestRankGlyphs(t *testing.T) {
	for _, s := range []string{"E2", "D4", "GM", "M", "C", "p1"} {
		if !isRankGlyph(s) {
			t.Fatalf("expected %q to be a rank glyph", s)
		}
	}
	for _, s := range []string{"E5", "X1", "EE", "LYMERA"} {
		if isRankGlyph(s) {
			t.Fatalf("%q is not a rank glyph", s)
		}
	}
	if got := stripRankPrefix("E2 FFOXFACE"); got != "FFOXFACE" {
		t.Fatalf("stripRankPrefix = %q", got)
	}
	if got := stripRankPrefix("FFOXFACE"); got != "FFOXFACE" {
		t.Fatalf("stripRankPrefix changed a plain name: %q", got)
	}
}
