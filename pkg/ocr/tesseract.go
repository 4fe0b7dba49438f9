package ocr

import (
	"fmt"
	"image"
	"log"
	"math"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"standings-ocr/pkg/standings"
)

// Tesseract is a Source backed by a local Tesseract install via gosseract.
// Each Detect call uses its own client, so one Tesseract value can serve
// concurrent workers.
type Tesseract struct {
	Lang       string
	Preprocess Preprocess
	// MergeGap is passed to MergeWords; 0 disables merging.
	MergeGap float64
	Verbose  bool
}

// NewTesseract returns a Tesseract source with the light preprocessing pass.
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Lang: lang, Preprocess: DefaultPreprocess(), MergeGap: DefaultMergeGap}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Detect recognizes word boxes in the image at path and returns them as
// polygon detections in original image coordinates.
func (t *Tesseract) Detect(path string) ([]standings.Detection, error) {
	words, err := t.Words(path)
	if err != nil {
		return nil, err
	}
	dets := make([]standings.Detection, 0, len(words))
	for _, w := range words {
		dets = append(dets, w.Detection())
	}
	return dets, nil
}

// Words runs recognition and returns merged word boxes.
func (t *Tesseract) Words(path string) ([]Word, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoImage, path, err)
	}
	prepared, scale := prepare(img, t.Preprocess)

	tmpFile, err := os.CreateTemp("", "standings-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("temp file: %w", err)
	}
	tmp := tmpFile.Name()
	_ = tmpFile.Close()
	defer os.Remove(tmp)
	if err := imaging.Save(prepared, tmp); err != nil {
		return nil, fmt.Errorf("save prepared image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Lang); err != nil {
		return nil, fmt.Errorf("set language %q: %w", t.Lang, err)
	}
	_ = client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT)
	if err := client.SetImage(tmp); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr error: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	var texts []string
	for _, b := range boxes {
		text := normalizeOCRText(b.Word)
		if text == "" {
			continue
		}
		texts = append(texts, text)
		words = append(words, Word{
			Text:       text,
			Box:        unscale(b.Box, scale),
			Confidence: math.Max(0, math.Min(1, b.Confidence/100)),
			Block:      b.BlockNum,
			Par:        b.ParNum,
			Line:       b.LineNum,
		})
	}
	if t.Verbose {
		log.Printf("OCR RAW %s words=%d snippet=%q", path, len(words), snippet(strings.Join(texts, " "), 180))
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	if t.MergeGap > 0 {
		words = MergeWords(words, t.MergeGap)
	}
	return words, nil
}

func unscale(r image.Rectangle, scale float64) image.Rectangle {
	if scale == 1 {
		return r
	}
	f := func(v int) int { return int(math.Round(float64(v) / scale)) }
	return image.Rect(f(r.Min.X), f(r.Min.Y), f(r.Max.X), f(r.Max.Y))
}
