// Package report prints standings and leaderboard reports straight from SQL.
package report

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Range is a half-open [From, To) interval of played_at dates.
type Range struct {
	From, To time.Time
}

// ParseRange reads YYYY-MM (a whole month) or from..to with YYYY-MM-DD
// bounds, to inclusive.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if from, to, ok := strings.Cut(s, ".."); ok {
		f, err := time.Parse("2006-01-02", from)
		if err != nil {
			return Range{}, fmt.Errorf("invalid from date: %w", err)
		}
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return Range{}, fmt.Errorf("invalid to date: %w", err)
		}
		if t.Before(f) {
			return Range{}, fmt.Errorf("range %s ends before it starts", s)
		}
		return Range{From: f, To: t.AddDate(0, 0, 1)}, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Range{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Range{From: start, To: start.AddDate(0, 1, 0)}, nil
}

// Entry is one leaderboard line.
type Entry struct {
	Name   string
	Points int64
	Games  int64
	Wins   int64
	Avg    float64
}

// Lobby is one stored standing in the range.
type Lobby struct {
	ID       int64
	Lobby    string
	PlayedAt time.Time
	Status   string
	Players  int64
	Overall  float64
}

const leaderboardSQL = `
SELECT sp.name, SUM(sp.points), COUNT(*), SUM(CASE WHEN sp.placement = 1 THEN 1 ELSE 0 END), AVG(sp.placement)
FROM standing_players sp
JOIN standings s ON s.id = sp.standing_id
WHERE s.status = 'accepted' AND s.played_at >= $1 AND s.played_at < $2
GROUP BY sp.name
ORDER BY 2 DESC, 4 DESC, 1`

const lobbiesSQL = `
SELECT s.id, s.lobby, s.played_at, s.status, s.player_count, s.overall_score
FROM standings s
WHERE s.played_at >= $1 AND s.played_at < $2
ORDER BY s.played_at, s.id`

// Run connects with the pgx stdlib driver and writes the report for r to w.
// Lobbies of every status are listed when list is set.
func Run(w io.Writer, dsn string, r Range, list bool) error {
	if dsn == "" {
		return fmt.Errorf("dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	entries, err := leaderboard(db, r)
	if err != nil {
		return err
	}
	var lobbies []Lobby
	if list {
		if lobbies, err = listLobbies(db, r); err != nil {
			return err
		}
	}
	Write(w, r, entries, lobbies)
	return nil
}

func leaderboard(db *sql.DB, r Range) ([]Entry, error) {
	rows, err := db.Query(leaderboardSQL, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Points, &e.Games, &e.Wins, &e.Avg); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func listLobbies(db *sql.DB, r Range) ([]Lobby, error) {
	rows, err := db.Query(lobbiesSQL, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()
	var out []Lobby
	for rows.Next() {
		var l Lobby
		if err := rows.Scan(&l.ID, &l.Lobby, &l.PlayedAt, &l.Status, &l.Players, &l.Overall); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Write renders the report. Players level on points share a rank.
func Write(w io.Writer, r Range, entries []Entry, lobbies []Lobby) {
	fmt.Fprintf(w, "Leaderboard %s .. %s (UTC, accepted standings):\n", r.From.Format("2006-01-02"), r.To.AddDate(0, 0, -1).Format("2006-01-02"))
	if len(entries) == 0 {
		fmt.Fprintln(w, "  no accepted standings")
	}
	rank := 0
	for i, e := range entries {
		if i == 0 || e.Points != entries[i-1].Points {
			rank = i + 1
		}
		fmt.Fprintf(w, "%3d. %-24s points=%d games=%d wins=%d avg=%.2f\n", rank, e.Name, e.Points, e.Games, e.Wins, e.Avg)
	}
	if lobbies == nil {
		return
	}
	fmt.Fprintf(w, "\nStandings (%d):\n", len(lobbies))
	for _, l := range lobbies {
		fmt.Fprintf(w, "%d|%s|%s|%s|players=%d|overall=%.2f\n", l.ID, l.Lobby, l.PlayedAt.Format(time.RFC3339), l.Status, l.Players, l.Overall)
	}
}
