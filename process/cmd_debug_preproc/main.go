package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"standings-ocr/pkg/ocr"
)

// Compares the light and aggressive preprocessing passes on one screenshot:
// writes both prepared images next to it and prints what Tesseract reads.
func main() {
	in := flag.String("file", "", "screenshot to preprocess")
	lang := flag.String("lang", "eng", "tesseract language")
	keep := flag.Bool("keep", true, "keep the prepared images")
	flag.Parse()
	if *in == "" {
		log.Fatalf("-file required")
	}

	base := strings.TrimSuffix(*in, filepath.Ext(*in))
	passes := []struct {
		name string
		p    ocr.Preprocess
	}{
		{"default", ocr.DefaultPreprocess()},
		{"aggressive", ocr.AggressivePreprocess()},
	}
	for _, pass := range passes {
		out := fmt.Sprintf("%s.ocr.%s.png", base, pass.name)
		scale, err := ocr.PrepareFile(*in, out, pass.p)
		if err != nil {
			log.Fatalf("prepare %s: %v", pass.name, err)
		}
		tess := ocr.NewTesseract(*lang)
		tess.Preprocess = pass.p
		words, err := tess.Words(*in)
		if err != nil {
			fmt.Printf("%s: scale=%.2f image=%s error=%v\n", pass.name, scale, out, err)
		} else {
			var sum float64
			for _, w := range words {
				sum += w.Confidence
			}
			fmt.Printf("%s: scale=%.2f image=%s words=%d mean_conf=%.3f\n", pass.name, scale, out, len(words), sum/float64(len(words)))
			for _, w := range words {
				fmt.Printf("  %-24q %v conf=%.2f\n", w.Text, w.Box, w.Confidence)
			}
		}
		if !*keep {
			_ = os.Remove(out)
		}
	}
}
