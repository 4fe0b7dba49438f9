package standings

import (
	"math"
	"sort"
)

// Row is a band of tokens presumed to belong to one player's entry.
type Row struct {
	// Tokens are ordered left to right.
	Tokens []Token
	// Y is the running mean Y of Tokens.
	Y float64
}

func (r *Row) add(t Token) {
	n := float64(len(r.Tokens))
	r.Y = (r.Y*n + t.Y) / (n + 1)
	r.Tokens = append(r.Tokens, t)
}

// ClusterRows groups Y-sorted tokens into rows in a single greedy pass: each
// token joins the first row whose running mean Y is within threshold, or
// starts a new row. Rows are returned top to bottom.
//
// A threshold that is too small leaves split name fragments in separate rows;
// one that is too large merges neighbouring players. Neither is corrected here.
func ClusterRows(tokens []Token, threshold float64) []Row {
	var rows []Row
	for _, t := range tokens {
		joined := false
		for i := range rows {
			if math.Abs(t.Y-rows[i].Y) <= threshold {
				rows[i].add(t)
				joined = true
				break
			}
		}
		if !joined {
			rows = append(rows, Row{Tokens: []Token{t}, Y: t.Y})
		}
	}
	for i := range rows {
		toks := rows[i].Tokens
		sort.SliceStable(toks, func(a, b int) bool { return toks[a].X < toks[b].X })
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Y < rows[j].Y })
	return rows
}
