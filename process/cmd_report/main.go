package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"standings-ocr/pkg/config"
	"standings-ocr/process/report"
)

func main() {
	config.Load()
	period := flag.String("range", time.Now().UTC().Format("2006-01"), "period to report: YYYY-MM or YYYY-MM-DD..YYYY-MM-DD")
	list := flag.Bool("list", false, "list every standing in the period")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	r, err := report.ParseRange(*period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if err := report.Run(os.Stdout, dsn, r, *list); err != nil {
		fmt.Fprintf(os.Stderr, "report failed: %v\n", err)
		os.Exit(1)
	}
}
