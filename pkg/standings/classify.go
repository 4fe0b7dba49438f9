package standings

// Format is the screenshot layout picked by Classify.
type Format string

const (
	// FormatColumned has a placement number column left of the names.
	FormatColumned Format = "columned"
	// FormatRankAbbreviated prefixes names with rank glyphs and has no usable
	// placement column.
	FormatRankAbbreviated Format = "rank_abbreviated"
	// FormatPlain lists names top to bottom with nothing else to anchor them.
	FormatPlain Format = "plain"
)

// Strategy is the matcher that produced a Result's players.
type Strategy string

const (
	StrategyPlacementDistance Strategy = "placement_distance"
	StrategyRowBestCandidate  Strategy = "row_best_candidate"
	StrategyYOrdered          Strategy = "y_ordered"
)

// Evidence is what the classifier looks at.
type Evidence struct {
	Placements int
	Names      int
	Rows       int
	// RankRows counts rows holding a rank glyph that is not also a placement.
	RankRows int
}

// rankMajority reports whether enough rows carry rank glyphs. The bar is
// RankEvidenceRows, lowered to a simple majority for short screenshots.
func (e Evidence) rankMajority(cfg Config) bool {
	if e.RankRows == 0 {
		return false
	}
	need := (e.Rows + 1) / 2
	if cfg.RankEvidenceRows < need {
		need = cfg.RankEvidenceRows
	}
	return e.RankRows >= need
}

// Classify picks exactly one layout. Checks run in priority order.
func Classify(e Evidence, cfg Config) Format {
	rank := e.rankMajority(cfg)
	switch {
	case e.Placements > 0 && !rank:
		return FormatColumned
	case rank:
		return FormatRankAbbreviated
	default:
		return FormatPlain
	}
}

// gatherEvidence counts the classifier inputs over clustered rows.
func gatherEvidence(rows []Row, placements []PlacementCandidate, names []NameCandidate, cfg Config) Evidence {
	e := Evidence{Placements: len(placements), Names: len(names), Rows: len(rows)}
	for _, r := range rows {
		for _, t := range r.Tokens {
			if IsPlacement(t, cfg) {
				continue
			}
			if isRankGlyph(t.Text) || hasRankPrefix(t.Text) {
				e.RankRows++
				break
			}
		}
	}
	return e
}
