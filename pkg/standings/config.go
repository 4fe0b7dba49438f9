package standings

// ExpectedPlayers is the lobby size every standings screenshot is judged against.
const ExpectedPlayers = 8

// Config holds the thresholds used by the filters, the row clusterer, the
// classifier and the matchers. Distances are in source-image pixels.
type Config struct {
	// PlacementMaxX is the left-margin threshold: placement numbers must sit left of it.
	PlacementMaxX float64

	// NameMinX and NameMaxX bound the name column band.
	NameMinX float64
	NameMaxX float64

	// MinNameConfidence is the exclusive lower bound on a name token's confidence.
	MinNameConfidence float64

	// MinNameLetters is the minimum count of alphabetic characters in a name.
	MinNameLetters int

	// MinNameLength and MaxNameLength bound the cleaned name length in runes.
	MinNameLength int
	MaxNameLength int

	// RowThreshold (τ_row) is the max distance between a token's Y and a row's
	// running mean Y for the token to join that row.
	RowThreshold float64

	// MaxRowGap is the exclusive bound on |Δy| between a placement and its name.
	MaxRowGap float64

	// NameLeftMargin is how far left of its placement a name may start.
	NameLeftMargin float64

	// MinPlacements is the number of placement candidates required before
	// placement-distance matching is trusted. It is lowered to the number of
	// name candidates when fewer names exist.
	MinPlacements int

	// RankEvidenceRows is the number of rows carrying a rank glyph that marks a
	// screenshot as rank-abbreviated (capped at a simple majority of rows).
	RankEvidenceRows int

	// MinPlayers is the player count under which a result is flagged insufficient.
	MinPlayers int

	// Points maps placement to tournament points.
	Points map[int]int
}

// DefaultPoints returns a fresh copy of the placement to points table.
func DefaultPoints() map[int]int {
	return map[int]int{1: 8, 2: 7, 3: 6, 4: 5, 5: 4, 6: 3, 7: 2, 8: 1}
}

// DefaultConfig returns thresholds tuned for 1080p-class standings screenshots.
func DefaultConfig() Config {
	return Config{
		PlacementMaxX:     150,
		NameMinX:          60,
		NameMaxX:          1600,
		MinNameConfidence: 0.5,
		MinNameLetters:    3,
		MinNameLength:     3,
		MaxNameLength:     30,
		RowThreshold:      20,
		MaxRowGap:         40,
		NameLeftMargin:    10,
		MinPlacements:     6,
		RankEvidenceRows:  4,
		MinPlayers:        4,
		Points:            DefaultPoints(),
	}
}

// minPlacements returns the placement count needed for distance matching when
// names name candidates are available.
func (c Config) minPlacements(names int) int {
	m := c.MinPlacements
	if names < m {
		m = names
	}
	if m < 1 {
		m = 1
	}
	return m
}

func (c Config) points(placement int) int {
	if c.Points == nil {
		return DefaultPoints()[placement]
	}
	return c.Points[placement]
}
