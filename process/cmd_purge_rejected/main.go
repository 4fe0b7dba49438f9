package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"

	"standings-ocr/pkg/config"
)

// Deletes rejected standings older than -days together with screenshots that
// never produced a usable standing.
func main() {
	config.Load()
	days := flag.Int("days", 30, "only purge rows older than this many days")
	dry := flag.Bool("dry-run", true, "only count what would be deleted")
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

	const rejected = `FROM standings WHERE status = 'rejected' AND created_at < NOW() - make_interval(days => $1)`
	const failed = `FROM screenshots sc WHERE sc.failed AND sc.created_at < NOW() - make_interval(days => $1)
		AND NOT EXISTS (SELECT 1 FROM standings s WHERE s.screenshot_id = sc.id)`

	if *dry {
		var nStandings, nShots int64
		if err := db.QueryRow(`SELECT count(*) `+rejected, *days).Scan(&nStandings); err != nil {
			log.Fatalf("count standings: %v", err)
		}
		if err := db.QueryRow(`SELECT count(*) `+failed, *days).Scan(&nShots); err != nil {
			log.Fatalf("count screenshots: %v", err)
		}
		fmt.Printf("DRY: would delete standings=%d failed screenshots=%d\n", nStandings, nShots)
		return
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	defer tx.Rollback()
	// players go with their standing through ON DELETE CASCADE
	res1, err := tx.Exec(`DELETE `+rejected, *days)
	if err != nil {
		log.Fatalf("delete rejected standings: %v", err)
	}
	n1, _ := res1.RowsAffected()
	res2, err := tx.Exec(`DELETE `+failed, *days)
	if err != nil {
		log.Fatalf("delete failed screenshots: %v", err)
	}
	n2, _ := res2.RowsAffected()
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("purge done: standings deleted=%d, screenshots deleted=%d\n", n1, n2)
}
