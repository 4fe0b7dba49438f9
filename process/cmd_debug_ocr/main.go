package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"standings-ocr/pkg/ocr"
	"standings-ocr/pkg/standings"
)

// Prints what the extractor sees for one screenshot: tokens with their
// filter verdicts, the row clustering and the final result.
func main() {
	f := flag.String("file", "", "screenshot or detections .json to inspect")
	lang := flag.String("lang", "eng", "tesseract language")
	aggressive := flag.Bool("aggressive", false, "use the aggressive preprocessing pass")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}

	tess := ocr.NewTesseract(*lang)
	if *aggressive {
		tess.Preprocess = ocr.AggressivePreprocess()
	}
	src := ocr.ForPath(*f, tess)
	dets, err := src.Detect(*f)
	if err != nil && !errors.Is(err, ocr.ErrNoWords) {
		log.Fatalf("ocr error: %v", err)
	}
	fmt.Printf("source=%s detections=%d\n", src.Name(), len(dets))

	cfg := standings.DefaultConfig()
	tokens, err := standings.Ingest(dets)
	if err != nil {
		fmt.Printf("ingest: %v\n", err)
	}
	for _, t := range tokens {
		fmt.Printf("  %-28q x=%6.1f y=%6.1f conf=%.2f placement=%v name=%v denied=%v\n",
			t.Text, t.X, t.Y, t.Confidence, standings.IsPlacement(t, cfg), standings.IsName(t, cfg), standings.IsDenied(t.Text))
	}
	for i, r := range standings.ClusterRows(tokens, cfg.RowThreshold) {
		fmt.Printf("row %d y=%.1f:", i+1, r.Y)
		for _, t := range r.Tokens {
			fmt.Printf(" %q", t.Text)
		}
		fmt.Println()
	}

	res := standings.NewExtractorWithConfig(cfg).Extract(dets)
	fmt.Printf("format=%s strategy=%s low_confidence=%v\n", res.Format, res.Strategy, res.LowConfidence)
	res.Tokens = nil
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
