package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"

	"standings-ocr/models"
	"standings-ocr/pkg/standings"
)

func columnedResult() *standings.Result {
	return standings.ExtractStandings([]standings.Detection{
		{Text: "1", Center: &standings.Point{X: 40, Y: 100}, Confidence: 0.9},
		{Text: "DEEPESTREGRETS", Center: &standings.Point{X: 300, Y: 102}, Confidence: 0.9},
		{Text: "2", Center: &standings.Point{X: 42, Y: 160}, Confidence: 0.9},
		{Text: "LYMERA", Center: &standings.Point{X: 300, Y: 158}, Confidence: 0.9},
	})
}

func fullLobbyResult(conf float64) *standings.Result {
	names := []string{"LYMERA", "OTTERPOP", "FFOXFACE", "WOLFPACK", "MORGAN", "KINGCRAB", "DEEPESTREGRETS", "SOJU"}
	var dets []standings.Detection
	for i, n := range names {
		y := float64(100 + 60*i)
		dets = append(dets,
			standings.Detection{Text: fmt.Sprint(i + 1), Center: &standings.Point{X: 40, Y: y}, Confidence: conf},
			standings.Detection{Text: n, Center: &standings.Point{X: 300, Y: y}, Confidence: conf},
		)
	}
	return standings.ExtractStandings(dets)
}

func TestReviewStatus(t *testing.T) {
	cases := []struct {
		name      string
		res       *standings.Result
		threshold float64
		want      string
	}{
		{"nil", nil, 0.75, models.StatusRejected},
		{"no text", standings.ExtractStandings(nil), 0.75, models.StatusRejected},
		{"insufficient players", columnedResult(), 0.75, models.StatusNeedsReview},
		{"full lobby", fullLobbyResult(0.95), 0.75, models.StatusAccepted},
		{"full lobby, weak reads", fullLobbyResult(0.55), 0.9, models.StatusNeedsReview},
	}
	for _, c := range cases {
		if got := ReviewStatus(c.res, c.threshold); got != c.want {
			t.Fatalf("%s: ReviewStatus = %s want %s", c.name, got, c.want)
		}
	}
}

func TestBuildStanding(t *testing.T) {
	res := columnedResult()
	sid := uint(7)
	played := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	st, err := BuildStanding(res, Meta{UserID: 3, ScreenshotID: &sid, Lobby: " lobby A ", PlayedAt: played}, 0.75)
	if err != nil {
		t.Fatalf("BuildStanding: %v", err)
	}
	if st.UserID != 3 || *st.ScreenshotID != 7 || st.Lobby != "lobby A" || !st.PlayedAt.Equal(played) {
		t.Fatalf("meta not copied: %+v", st)
	}
	if st.Format != "columned" || st.PlayerCount != 2 || len(st.Players) != 2 {
		t.Fatalf("unexpected standing %+v", st)
	}
	if st.Players[0].Name != "Deepestregrets" || st.Players[0].Points != 8 || st.Players[1].Placement != 2 {
		t.Fatalf("unexpected players %+v", st.Players)
	}
	if !strings.Contains(st.Conditions, string(standings.CondInsufficientPlayers)) || st.Status != models.StatusNeedsReview {
		t.Fatalf("conditions=%q status=%s", st.Conditions, st.Status)
	}

	dets, err := Detections(&st)
	if err != nil {
		t.Fatalf("Detections: %v", err)
	}
	again := standings.ExtractStandings(dets)
	if again.StructuredData.PlayerCount != 2 || again.StructuredData.Players[1].Name != "Lymera" {
		t.Fatalf("stored tokens do not reproduce the result: %+v", again.StructuredData)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{pgErr, true},
		{fmt.Errorf("create standing: %w", pgErr), true},
		{&pgconn.PgError{Code: "23503"}, false},
		{errors.New(`ERROR: duplicate key value violates unique constraint "idx_user_file"`), true},
		{errors.New("connection refused"), false},
	}
	for _, c := range cases {
		if got := IsUniqueViolation(c.err); got != c.want {
			t.Fatalf("IsUniqueViolation(%v) = %v want %v", c.err, got, c.want)
		}
	}
}

func TestNormalizeCorrections(t *testing.T) {
	got, err := normalizeCorrections(map[int]string{1: "kingofthehill", 3: " lymer4 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[1] != "King of the Hill" || got[3] != "Lymera" {
		t.Fatalf("unexpected corrections %v", got)
	}
	if _, err := normalizeCorrections(map[int]string{2: "Lobby"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName got %v", err)
	}
}

func TestTruncateUTF8(t *testing.T) {
	long := strings.Repeat("a", 254) + "ö" + "tail"
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 255, "short"},
		{strings.Repeat("x", 255), 255, strings.Repeat("x", 255)},
		{long, 255, strings.Repeat("a", 254)},
		{long, 256, strings.Repeat("a", 254) + "ö"},
		{"日本語", 4, "日"},
		{"日本語", 2, ""},
	}
	for _, c := range cases {
		got := truncateUTF8(c.in, c.max)
		if got != c.want {
			t.Fatalf("truncateUTF8(%q, %d) = %q, want %q", c.in, c.max, got, c.want)
		}
		if !utf8.ValidString(got) || len(got) > c.max {
			t.Fatalf("truncateUTF8(%q, %d) produced invalid %q", c.in, c.max, got)
		}
	}
}

func TestReviewStatusUnmatchedPlacement(t *testing.T) {
	res := fullLobbyResult(0.95)
	var dets []standings.Detection
	for _, tok := range res.Tokens {
		if tok.Text != "SOJU" {
			dets = append(dets, tok.Detection())
		}
	}
	res = standings.ExtractStandings(dets)
	if !res.Has(standings.CondUnmatchedPlacement) || res.LowConfidence {
		t.Fatalf("expected an informational unmatched placement: %+v", res.Conditions)
	}
	if got := ReviewStatus(res, 0.75); got != models.StatusAccepted {
		t.Fatalf("seven of eight: ReviewStatus = %s want %s", got, models.StatusAccepted)
	}
}

func TestRankRows(t *testing.T) {
	rows := []LeaderboardRow{
		{Name: "Lymera", Points: 30, Wins: 2},
		{Name: "Soju", Points: 25, Wins: 1},
		{Name: "Morgan", Points: 25, Wins: 1},
		{Name: "Otterpop", Points: 25, Wins: 0},
	}
	rankRows(rows)
	want := []int{1, 2, 2, 4}
	for i, w := range want {
		if rows[i].Rank != w {
			t.Fatalf("row %d rank %d want %d", i, rows[i].Rank, w)
		}
	}
}

func TestSaveReviewLeaderboardIntegration(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gdb := MustOpenFromEnv()
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SeedRoles(gdb); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	if _, err := SeedAdmin(gdb, "admin", "admin123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	var admin models.User
	if err := gdb.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	tour := models.Tournament{Name: fmt.Sprintf("it-%d", time.Now().UnixNano()), CreatedBy: admin.ID}
	if err := gdb.Create(&tour).Error; err != nil {
		t.Fatalf("tournament: %v", err)
	}
	shot := models.Screenshot{FileName: fmt.Sprintf("it-%d.png", time.Now().UnixNano()), UserID: admin.ID}
	if err := gdb.Create(&shot).Error; err != nil {
		t.Fatalf("screenshot: %v", err)
	}

	meta := Meta{UserID: admin.ID, ScreenshotID: &shot.ID, TournamentID: &tour.ID, Lobby: "it"}
	st, err := SaveStanding(gdb, columnedResult(), meta, 0.75)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := SaveStanding(gdb, columnedResult(), meta, 0.75); !errors.Is(err, ErrAlreadyExtracted) {
		t.Fatalf("expected ErrAlreadyExtracted got %v", err)
	}

	st, err = ApplyReview(gdb, st.ID, admin.ID, models.StatusAccepted, map[int]string{2: "LYMER4 "})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if st.Status != models.StatusAccepted || st.Players[1].Name != "Lymera" || st.ReviewedBy == nil {
		t.Fatalf("review not applied: %+v", st)
	}
	if _, err := ApplyReview(gdb, st.ID, admin.ID, "maybe", nil); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus got %v", err)
	}

	rows, err := Leaderboard(gdb, LeaderboardFilter{TournamentID: &tour.ID})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 2 || rows[0].Name != "Deepestregrets" || rows[0].Points != 8 || rows[0].Rank != 1 {
		t.Fatalf("unexpected leaderboard %+v", rows)
	}

	if err := ReplaceResult(gdb, st, fullLobbyResult(0.95), 0.75); err != nil {
		t.Fatalf("replace: %v", err)
	}
	again, err := Find(gdb, st.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if again.PlayerCount != 8 || len(again.Players) != 8 || again.ReviewedBy != nil {
		t.Fatalf("replace not applied: %+v", again)
	}
}
