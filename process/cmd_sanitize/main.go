package main

import (
	"flag"
	"log"
	"os"

	"standings-ocr/pkg/config"
	"standings-ocr/pkg/store"
	"standings-ocr/process/sanitize"
)

func main() {
	cfg := config.Load()
	var opts sanitize.Options
	flag.BoolVar(&opts.DryRun, "dry-run", true, "Don't perform destructive actions; show what would be done")
	flag.BoolVar(&opts.Yes, "yes", false, "Confirm destructive action (required to actually truncate)")
	flag.BoolVar(&opts.Reseed, "reseed", false, "After truncation, reseed master roles and admin user")
	flag.StringVar(&opts.Tables, "tables", sanitize.DefaultTables, "Comma-separated list of tables to truncate")
	flag.Parse()
	opts.AdminPassword = cfg.AdminPassword

	if os.Getenv("DB_DSN") == "" {
		log.Fatal("DB_DSN must be set to run db_sanitize")
	}
	if err := sanitize.Run(store.MustOpenFromEnv(), opts); err != nil {
		log.Fatal(err)
	}
}
