package sanitize

import (
	"reflect"
	"testing"
)

func TestParseTables(t *testing.T) {
	valid, invalid := ParseTables(" standings, standing_players ,,users;drop,1bad,_tmp ")
	if !reflect.DeepEqual(valid, []string{"standings", "standing_players", "_tmp"}) {
		t.Fatalf("valid = %q", valid)
	}
	if !reflect.DeepEqual(invalid, []string{"users;drop", "1bad"}) {
		t.Fatalf("invalid = %q", invalid)
	}
}

func TestDefaultTablesAreValid(t *testing.T) {
	valid, invalid := ParseTables(DefaultTables)
	if len(invalid) != 0 || len(valid) != 7 {
		t.Fatalf("default tables: valid=%q invalid=%q", valid, invalid)
	}
}

func TestTruncateStatement(t *testing.T) {
	got := TruncateStatement([]string{"standings", "standing_players"})
	want := `TRUNCATE TABLE "standings", "standing_players" RESTART IDENTITY CASCADE`
	if got != want {
		t.Fatalf("got %s", got)
	}
}
