package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"standings-ocr/pkg/config"
	"standings-ocr/pkg/standings"
	"standings-ocr/pkg/store"
	"standings-ocr/process/reextract"
)

func main() {
	cfg := config.Load()
	dry := flag.Bool("dry-run", true, "dry-run: only print the differences")
	status := flag.String("status", "", "only standings in this review state")
	ids := flag.String("ids", "", "comma separated standing ids")
	reviewed := flag.Bool("reviewed", false, "also rewrite standings that were already reviewed")
	flag.Parse()

	if os.Getenv("DB_DSN") == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export and retry")
		os.Exit(2)
	}
	opts := reextract.Options{Status: *status, Reviewed: *reviewed, Dry: *dry, Threshold: cfg.AcceptThreshold}
	for _, s := range strings.Split(*ids, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid id %q\n", s)
			os.Exit(2)
		}
		opts.IDs = append(opts.IDs, uint(id))
	}

	gdb := store.MustOpenFromEnv()
	stats, err := reextract.Run(gdb, standings.NewExtractor(), opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("scanned=%d changed=%d updated=%d failed=%d dry=%v\n", stats.Scanned, stats.Changed, stats.Updated, stats.Failed, *dry)
}
