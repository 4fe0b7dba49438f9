package standings

import (
	"errors"
	"math"
	"testing"
)

func TestIngestSortsAndDrops(t *testing.T) {
	dets := []Detection{
		det("LYMERA", 300, 158, 0.9),
		det("   ", 300, 50, 0.9),
		{Text: "NOCOORDS", Confidence: 0.9},
		det("NAN", math.NaN(), 10, 0.9),
		det("1", 40, 100, 0.9),
		{Text: "BOXED", Polygon: []Point{{X: 100, Y: 120}, {X: 200, Y: 120}, {X: 200, Y: 140}, {X: 100, Y: 140}}, Confidence: 1.7},
	}
	toks, err := Ingest(dets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"1", "BOXED", "LYMERA"}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens got %d: %+v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Text != w {
			t.Fatalf("token %d: expected %q got %q", i, w, toks[i].Text)
		}
	}
	if toks[1].X != 150 || toks[1].Y != 130 {
		t.Fatalf("polygon center wrong: %+v", toks[1])
	}
	if toks[1].Confidence != 1 {
		t.Fatalf("confidence not clamped: %v", toks[1].Confidence)
	}
}

func TestIngestNoText(t *testing.T) {
	for _, dets := range [][]Detection{nil, {det(" ", 1, 1, 1)}, {{Text: "X"}}} {
		if _, err := Ingest(dets); !errors.Is(err, ErrNoTextDetected) {
			t.Fatalf("expected ErrNoTextDetected for %+v got %v", dets, err)
		}
	}
}

func TestIngestStableForEqualY(t *testing.T) {
	toks := tokensOf(det("B", 300, 100, 1), det("A", 100, 100, 1))
	if toks[0].Text != "B" || toks[1].Text != "A" {
		t.Fatalf("equal-Y order not preserved: %+v", toks)
	}
}
