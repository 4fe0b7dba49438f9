// Package reextract re-runs extraction over the tokens stored with each
// standing, for example after the name correction tables changed.
package reextract

import (
	"fmt"
	"io"
	"log"

	"gorm.io/gorm"

	"standings-ocr/models"
	"standings-ocr/pkg/standings"
	"standings-ocr/pkg/store"
)

// Options selects which standings are re-extracted.
type Options struct {
	// Status limits the run to one review state; empty means all.
	Status string
	// IDs limits the run to specific standings.
	IDs []uint
	// Reviewed also rewrites standings an administrator already reviewed.
	Reviewed  bool
	Dry       bool
	Threshold float64
}

// Stats summarizes a run.
type Stats struct {
	Scanned, Changed, Updated, Failed int
}

// Run re-extracts the selected standings and writes changed results back.
// With Dry set it only prints the differences to w.
func Run(gdb *gorm.DB, ex *standings.Extractor, opts Options, w io.Writer) (Stats, error) {
	q := gdb.Model(&models.Standing{}).Preload("Players", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("placement")
	}).Order("id")
	if opts.Status != "" {
		q = q.Where("status = ?", opts.Status)
	}
	if len(opts.IDs) > 0 {
		q = q.Where("id IN ?", opts.IDs)
	}
	if !opts.Reviewed {
		q = q.Where("reviewed_at IS NULL")
	}
	var list []models.Standing
	if err := q.Find(&list).Error; err != nil {
		return Stats{}, fmt.Errorf("load standings: %w", err)
	}

	var stats Stats
	for i := range list {
		st := &list[i]
		stats.Scanned++
		dets, err := store.Detections(st)
		if err != nil {
			log.Printf("standing %d: %v", st.ID, err)
			stats.Failed++
			continue
		}
		res := ex.Extract(dets)
		if !res.Success {
			log.Printf("standing %d: re-extraction failed: %s", st.ID, res.Error)
			stats.Failed++
			continue
		}
		changes := Diff(st, res)
		if len(changes) == 0 {
			continue
		}
		stats.Changed++
		for _, c := range changes {
			fmt.Fprintf(w, "standing %d: %s\n", st.ID, c)
		}
		if opts.Dry {
			continue
		}
		if err := store.ReplaceResult(gdb, st, res, opts.Threshold); err != nil {
			log.Printf("standing %d: update failed: %v", st.ID, err)
			stats.Failed++
			continue
		}
		stats.Updated++
	}
	return stats, nil
}

// Diff lists the player-level differences between a stored standing and a
// fresh result, ordered by placement.
func Diff(st *models.Standing, res *standings.Result) []string {
	old := map[int]models.StandingPlayer{}
	for _, p := range st.Players {
		old[p.Placement] = p
	}
	var out []string
	seen := map[int]bool{}
	for _, p := range res.StructuredData.Players {
		seen[p.Placement] = true
		prev, ok := old[p.Placement]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("#%d added %q", p.Placement, p.Name))
		case prev.Name != p.Name:
			out = append(out, fmt.Sprintf("#%d %q -> %q", p.Placement, prev.Name, p.Name))
		case prev.Points != p.Points:
			out = append(out, fmt.Sprintf("#%d %q points %d -> %d", p.Placement, p.Name, prev.Points, p.Points))
		}
	}
	for placement := 1; placement <= standings.ExpectedPlayers; placement++ {
		if p, ok := old[placement]; ok && !seen[placement] {
			out = append(out, fmt.Sprintf("#%d removed %q", placement, p.Name))
		}
	}
	return out
}
