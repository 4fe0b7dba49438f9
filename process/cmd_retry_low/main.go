package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"

	"standings-ocr/pkg/config"
	"standings-ocr/pkg/ocr"
	"standings-ocr/pkg/standings"
	"standings-ocr/pkg/store"
)

type candidate struct {
	id        int64
	overall   float64
	fileName  string
	storePath sql.NullString
}

// Re-reads screenshots of standings still waiting for review with the
// aggressive preprocessing pass and keeps the new reading when it scores
// higher.
func main() {
	cfg := config.Load()
	dir := flag.String("dir", "public/processed", "base dir for screenshots without a store path")
	lang := flag.String("lang", cfg.OCRLang, "tesseract language")
	dry := flag.Bool("dry-run", false, "print improvements without writing them")
	limit := flag.Int("limit", 100, "max standings to retry")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT s.id, s.overall_score, sc.file_name, sc.store_path
		FROM standings s JOIN screenshots sc ON sc.id = s.screenshot_id
		WHERE s.status = 'needs_review' AND s.reviewed_at IS NULL
		ORDER BY s.overall_score, s.id LIMIT $1`, *limit)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	var cands []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.overall, &c.fileName, &c.storePath); err != nil {
			log.Printf("scan: %v", err)
			continue
		}
		cands = append(cands, c)
	}
	rows.Close()

	tess := ocr.NewTesseract(*lang)
	tess.Preprocess = ocr.AggressivePreprocess()
	ex := standings.NewExtractor()
	improved := 0
	for _, c := range cands {
		path := filepath.Join(*dir, c.fileName)
		if c.storePath.Valid && c.storePath.String != "" {
			path = filepath.FromSlash(c.storePath.String)
		}
		dets, err := ocr.ForPath(path, tess).Detect(path)
		if err != nil && !errors.Is(err, ocr.ErrNoWords) {
			log.Printf("ocr %s: %v", path, err)
			continue
		}
		res := ex.Extract(dets)
		if !res.Success || res.Scores.Overall <= c.overall {
			log.Printf("no improvement id=%d file=%s old=%.2f new=%.2f", c.id, c.fileName, c.overall, res.Scores.Overall)
			continue
		}
		status := store.ReviewStatus(res, cfg.AcceptThreshold)
		if *dry {
			fmt.Printf("DRY: would update id=%d file=%s overall %.2f -> %.2f players=%d status=%s\n", c.id, c.fileName, c.overall, res.Scores.Overall, res.StructuredData.PlayerCount, status)
			continue
		}
		if err := replace(db, c.id, res, status); err != nil {
			log.Printf("update id=%d: %v", c.id, err)
			continue
		}
		improved++
		fmt.Printf("updated id=%d file=%s overall %.2f -> %.2f players=%d status=%s\n", c.id, c.fileName, c.overall, res.Scores.Overall, res.StructuredData.PlayerCount, status)
	}
	log.Printf("retried=%d improved=%d", len(cands), improved)
}

// replace swaps the players and scores of standing id inside one transaction.
func replace(db *sql.DB, id int64, res *standings.Result, status string) error {
	tokens, err := json.Marshal(res.Tokens)
	if err != nil {
		return err
	}
	conds := make([]string, len(res.Conditions))
	for i, c := range res.Conditions {
		conds[i] = string(c)
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM standing_players WHERE standing_id = $1`, id); err != nil {
		return fmt.Errorf("delete players: %w", err)
	}
	for _, p := range res.StructuredData.Players {
		if _, err := tx.Exec(`INSERT INTO standing_players (standing_id, placement, name, points) VALUES ($1, $2, $3, $4)`,
			id, p.Placement, p.Name, p.Points); err != nil {
			return fmt.Errorf("insert player %d: %w", p.Placement, err)
		}
	}
	_, err = tx.Exec(`UPDATE standings SET format=$1, strategy=$2, player_count=$3, character_score=$4,
		structural_score=$5, overall_score=$6, low_confidence=$7, conditions=$8, warnings=$9, tokens=$10,
		status=$11, updated_at=NOW() WHERE id=$12`,
		string(res.Format), string(res.Strategy), res.StructuredData.PlayerCount, res.Scores.Character,
		res.Scores.Structural, res.Scores.Overall, res.LowConfidence, strings.Join(conds, ","),
		strings.Join(res.Warnings, "\n"), string(tokens), status, id)
	if err != nil {
		return fmt.Errorf("update standing: %w", err)
	}
	return tx.Commit()
}
