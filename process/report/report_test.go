package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		in       string
		from, to string
		wantErr  bool
	}{
		{"2026-02", "2026-02-01", "2026-03-01", false},
		{"2026-12", "2026-12-01", "2027-01-01", false},
		{"2026-03-01..2026-03-07", "2026-03-01", "2026-03-08", false},
		{"2026-03-07..2026-03-01", "", "", true},
		{"march", "", "", true},
		{"2026-03-01..soon", "", "", true},
	}
	for _, c := range cases {
		r, err := ParseRange(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("ParseRange(%q) expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", c.in, err)
		}
		if got := r.From.Format("2006-01-02"); got != c.from {
			t.Fatalf("ParseRange(%q) from=%s want %s", c.in, got, c.from)
		}
		if got := r.To.Format("2006-01-02"); got != c.to {
			t.Fatalf("ParseRange(%q) to=%s want %s", c.in, got, c.to)
		}
	}
}

func TestWriteSharesRankOnEqualPoints(t *testing.T) {
	r, _ := ParseRange("2026-03")
	entries := []Entry{
		{Name: "Lymera", Points: 15, Games: 2, Wins: 1, Avg: 1.5},
		{Name: "Soju", Points: 15, Games: 2, Wins: 1, Avg: 1.5},
		{Name: "Morgan", Points: 9, Games: 2, Avg: 4.5},
	}
	var buf bytes.Buffer
	Write(&buf, r, entries, nil)
	out := buf.String()
	if !strings.Contains(out, "  1. Lymera") || !strings.Contains(out, "  1. Soju") || !strings.Contains(out, "  3. Morgan") {
		t.Fatalf("unexpected ranks:\n%s", out)
	}
	if !strings.Contains(out, "2026-03-01 .. 2026-03-31") {
		t.Fatalf("range header missing:\n%s", out)
	}
	if strings.Contains(out, "Standings (") {
		t.Fatalf("lobby list should be omitted when not requested")
	}
}

func TestWriteListsLobbies(t *testing.T) {
	r, _ := ParseRange("2026-03")
	var buf bytes.Buffer
	Write(&buf, r, nil, []Lobby{{ID: 7, Lobby: "A", PlayedAt: time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC), Status: "needs_review", Players: 6, Overall: 0.7}})
	out := buf.String()
	if !strings.Contains(out, "no accepted standings") || !strings.Contains(out, "7|A|2026-03-02T20:00:00Z|needs_review|players=6|overall=0.70") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
