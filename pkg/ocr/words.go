package ocr

import (
	"image"
	"math"
	"sort"
	"unicode"

	"standings-ocr/pkg/standings"
)

// Word is one recognized word box, in original image coordinates.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64 // 0..1
	Block      int
	Par        int
	Line       int
}

// Detection converts the word into a polygon detection.
func (w Word) Detection() standings.Detection {
	r := w.Box
	return standings.Detection{
		Text: w.Text,
		Polygon: []standings.Point{
			{X: float64(r.Min.X), Y: float64(r.Min.Y)},
			{X: float64(r.Max.X), Y: float64(r.Min.Y)},
			{X: float64(r.Max.X), Y: float64(r.Max.Y)},
			{X: float64(r.Min.X), Y: float64(r.Max.Y)},
		},
		Confidence: w.Confidence,
	}
}

// DefaultMergeGap is the largest horizontal gap, as a fraction of word height,
// across which two words on one line are joined.
const DefaultMergeGap = 0.6

// MergeWords joins words that Tesseract split out of one multi-word name:
// words on the same text line whose horizontal gap is at most gapRatio times
// the taller box height, when both contain a letter or digit. The merged word
// covers both boxes and keeps the lower confidence.
func MergeWords(words []Word, gapRatio float64) []Word {
	ws := append([]Word(nil), words...)
	sort.SliceStable(ws, func(i, j int) bool {
		a, b := ws[i], ws[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Par != b.Par {
			return a.Par < b.Par
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Box.Min.X < b.Box.Min.X
	})
	var out []Word
	for _, w := range ws {
		if n := len(out); n > 0 && joinable(out[n-1], w, gapRatio) {
			prev := &out[n-1]
			prev.Text += " " + w.Text
			prev.Box = prev.Box.Union(w.Box)
			prev.Confidence = math.Min(prev.Confidence, w.Confidence)
			continue
		}
		out = append(out, w)
	}
	return out
}

func joinable(a, b Word, gapRatio float64) bool {
	if a.Block != b.Block || a.Par != b.Par || a.Line != b.Line {
		return false
	}
	if !hasAlnum(a.Text) || !hasAlnum(b.Text) {
		return false
	}
	h := a.Box.Dy()
	if b.Box.Dy() > h {
		h = b.Box.Dy()
	}
	gap := b.Box.Min.X - a.Box.Max.X
	return gap >= 0 && float64(gap) <= gapRatio*float64(h)
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
