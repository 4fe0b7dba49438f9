package store

import (
	"time"

	"gorm.io/gorm"

	"standings-ocr/models"
)

// LeaderboardFilter narrows the standings that count toward a leaderboard.
// Only accepted standings ever count.
type LeaderboardFilter struct {
	TournamentID *uint
	From, To     time.Time
	Limit        int
}

// LeaderboardRow is one player's aggregate.
type LeaderboardRow struct {
	Rank         int     `json:"rank"`
	Name         string  `json:"name"`
	Points       int     `json:"points"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	AvgPlacement float64 `json:"avg_placement"`
}

// Leaderboard sums points per player name over accepted standings.
func Leaderboard(gdb *gorm.DB, f LeaderboardFilter) ([]LeaderboardRow, error) {
	q := gdb.Table("standing_players AS sp").
		Select(`sp.name AS name,
			COALESCE(SUM(sp.points),0) AS points,
			COUNT(*) AS games,
			SUM(CASE WHEN sp.placement = 1 THEN 1 ELSE 0 END) AS wins,
			AVG(sp.placement) AS avg_placement`).
		Joins("JOIN standings s ON s.id = sp.standing_id").
		Where("s.status = ?", models.StatusAccepted)
	if f.TournamentID != nil {
		q = q.Where("s.tournament_id = ?", *f.TournamentID)
	}
	if !f.From.IsZero() {
		q = q.Where("s.played_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("s.played_at < ?", f.To)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []LeaderboardRow
	if err := q.Group("sp.name").Order("points DESC, wins DESC, name ASC").Limit(limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	rankRows(rows)
	return rows, nil
}

// rankRows assigns competition ranks (1, 2, 2, 4) to rows already ordered by
// points and wins.
func rankRows(rows []LeaderboardRow) {
	for i := range rows {
		if i > 0 && rows[i].Points == rows[i-1].Points && rows[i].Wins == rows[i-1].Wins {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}
