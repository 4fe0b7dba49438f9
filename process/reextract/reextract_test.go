package reextract

import (
	"reflect"
	"testing"

	"standings-ocr/models"
	"standings-ocr/pkg/standings"
)

func TestDiff(t *testing.T) {
	st := &models.Standing{Players: []models.StandingPlayer{
		{Placement: 1, Name: "Ffoxface", Points: 8},
		{Placement: 2, Name: "Lymera", Points: 7},
		{Placement: 3, Name: "Soju", Points: 6},
	}}
	res := &standings.Result{StructuredData: standings.StructuredData{Players: []standings.Player{
		{Placement: 1, Name: "Ffoxface", Points: 8},
		{Placement: 2, Name: "Lymera", Points: 5},
		{Placement: 4, Name: "Morgan", Points: 5},
	}}}
	got := Diff(st, res)
	want := []string{
		`#2 "Lymera" points 7 -> 5`,
		`#4 added "Morgan"`,
		`#3 removed "Soju"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Diff = %q want %q", got, want)
	}
}

func TestDiffSameResult(t *testing.T) {
	st := &models.Standing{Players: []models.StandingPlayer{{Placement: 1, Name: "Lymera", Points: 8}}}
	res := &standings.Result{StructuredData: standings.StructuredData{Players: []standings.Player{{Placement: 1, Name: "Lymera", Points: 8}}}}
	if d := Diff(st, res); len(d) != 0 {
		t.Fatalf("expected no differences, got %q", d)
	}
}

func TestDiffRename(t *testing.T) {
	st := &models.Standing{Players: []models.StandingPlayer{{Placement: 1, Name: "Kingofthehill", Points: 8}}}
	res := &standings.Result{StructuredData: standings.StructuredData{Players: []standings.Player{{Placement: 1, Name: "King of the Hill", Points: 8}}}}
	got := Diff(st, res)
	if len(got) != 1 || got[0] != `#1 "Kingofthehill" -> "King of the Hill"` {
		t.Fatalf("unexpected diff %q", got)
	}
}
