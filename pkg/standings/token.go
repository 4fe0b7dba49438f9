package standings

import (
	"math"
	"sort"
	"strings"
)

// Point is a 2D image coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Detection is one raw OCR text detection. Engines report either a center
// point or a bounding polygon (a rectangle is a 4-point polygon); Center wins
// when both are present. Confidence is expected in [0,1].
type Detection struct {
	Text       string  `json:"text"`
	Center     *Point  `json:"center,omitempty"`
	Polygon    []Point `json:"polygon,omitempty"`
	Confidence float64 `json:"confidence"`
}

// center derives the detection's center, reporting false for detections that
// carry no usable geometry.
func (d Detection) center() (Point, bool) {
	if d.Center != nil {
		return *d.Center, finite(d.Center.X) && finite(d.Center.Y)
	}
	if len(d.Polygon) == 0 {
		return Point{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range d.Polygon {
		if !finite(p.X) || !finite(p.Y) {
			return Point{}, false
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}, true
}

// Token is a canonical OCR text fragment. Tokens are values and are never
// modified after ingestion.
type Token struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Detection converts the token back into a center-point detection.
func (t Token) Detection() Detection {
	return Detection{Text: t.Text, Center: &Point{X: t.X, Y: t.Y}, Confidence: t.Confidence}
}

// Ingest converts raw detections into Tokens sorted by ascending Y. Blank
// detections and detections without usable coordinates are dropped. It
// returns ErrNoTextDetected when nothing remains.
func Ingest(dets []Detection) ([]Token, error) {
	out := make([]Token, 0, len(dets))
	for _, d := range dets {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		c, ok := d.center()
		if !ok {
			continue
		}
		out = append(out, Token{Text: text, X: c.X, Y: c.Y, Confidence: clampUnit(d.Confidence)})
	}
	if len(out) == 0 {
		return nil, ErrNoTextDetected
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y < out[j].Y })
	return out, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clampUnit(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
