package standings

import "math"

func det(text string, x, y, conf float64) Detection {
	return Detection{Text: text, Center: &Point{X: x, Y: y}, Confidence: conf}
}

func tokensOf(dets ...Detection) []Token {
	toks, err := Ingest(dets)
	if err != nil {
		panic(err)
	}
	return toks
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
