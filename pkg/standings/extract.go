package standings

import (
	"fmt"
	"sort"
)

// Player is one validated standings entry.
type Player struct {
	Placement int    `json:"placement"`
	Name      string `json:"name"`
	Points    int    `json:"points"`
}

// StructuredData is the player payload of a Result.
type StructuredData struct {
	Players         []Player `json:"players"`
	PlayerCount     int      `json:"player_count"`
	ExpectedPlayers int      `json:"expected_players"`
}

// Result is the outcome of one extraction. Expected failure modes are
// represented here rather than returned as errors: Err is set only when no
// text was usable, and degraded runs carry Conditions and LowConfidence.
type Result struct {
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	StructuredData StructuredData `json:"structured_data"`
	Scores         Scores         `json:"scores"`

	Format        Format      `json:"format,omitempty"`
	Strategy      Strategy    `json:"strategy,omitempty"`
	LowConfidence bool        `json:"low_confidence"`
	Conditions    []Condition `json:"conditions,omitempty"`
	Warnings      []string    `json:"warnings,omitempty"`

	// Tokens are the ingested tokens the result was computed from, for
	// debugging and re-extraction.
	Tokens []Token `json:"tokens,omitempty"`

	Err error `json:"-"`
}

// Has reports whether the result carries condition c.
func (r *Result) Has(c Condition) bool {
	for _, x := range r.Conditions {
		if x == c {
			return true
		}
	}
	return false
}

// note records c without judging the result.
func (r *Result) note(c Condition) {
	if !r.Has(c) {
		r.Conditions = append(r.Conditions, c)
	}
}

// flag records c and marks the result low confidence.
func (r *Result) flag(c Condition) {
	r.note(c)
	r.LowConfidence = true
}

// Extractor turns raw detections into standings. It holds configuration only
// and is safe for concurrent use.
type Extractor struct {
	config Config
}

// NewExtractor creates an extractor with DefaultConfig.
func NewExtractor() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewExtractorWithConfig creates an extractor with a custom configuration.
func NewExtractorWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config { return e.config }

// ExtractStandings runs the default extractor over dets.
func ExtractStandings(dets []Detection) *Result {
	return NewExtractor().Extract(dets)
}

// Extract ingests dets, classifies the layout, runs the matching strategy,
// normalizes names and scores the outcome. It never panics.
func (e *Extractor) Extract(dets []Detection) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("extraction aborted: %v", r)
			res = newResult()
			res.Err = err
			res.Error = err.Error()
		}
	}()

	res = newResult()
	tokens, err := Ingest(dets)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		return res
	}
	res.Tokens = tokens

	matches := e.match(res, tokens)
	e.assemble(res, matches)
	res.Success = true
	return res
}

func newResult() *Result {
	return &Result{StructuredData: StructuredData{Players: []Player{}, ExpectedPlayers: ExpectedPlayers}}
}

// match classifies the layout and runs exactly one strategy.
func (e *Extractor) match(res *Result, tokens []Token) []Match {
	cfg := e.config
	rows := ClusterRows(tokens, cfg.RowThreshold)
	placements := placementCandidates(tokens, cfg)
	names := nameCandidates(tokens, cfg)

	res.Format = Classify(gatherEvidence(rows, placements, names, cfg), cfg)
	switch res.Format {
	case FormatColumned:
		if len(names) > 0 && len(placements) >= cfg.minPlacements(len(names)) {
			res.Strategy = StrategyPlacementDistance
			matches, warnings := MatchByDistance(placements, names, cfg)
			res.Warnings = append(res.Warnings, warnings...)
			if len(matches) < len(placements) {
				res.note(CondUnmatchedPlacement)
			}
			return matches
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("only %d placements for %d names, falling back to screen order", len(placements), len(names)))
		res.flag(CondAmbiguousFormat)
		res.Strategy = StrategyYOrdered
		return InferByYOrder(names, cfg)
	case FormatRankAbbreviated:
		res.Strategy = StrategyRowBestCandidate
		return BestPerRow(rows, cfg)
	default:
		res.Strategy = StrategyYOrdered
		return InferByYOrder(names, cfg)
	}
}

// assemble normalizes names, fills points and scores the result. Players whose
// name does not survive normalization are dropped; order-inferred placements
// close the gap, token-read placements keep their value.
func (e *Extractor) assemble(res *Result, matches []Match) {
	var contributing []Token
	players := make([]Player, 0, len(matches))
	for _, m := range matches {
		name, ok := Normalize(m.RawName)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("dropped %q at placement %d after normalization", m.RawName, m.Placement))
			continue
		}
		placement := m.Placement
		if m.Inferred {
			placement = len(players) + 1
		}
		if placement < 1 || placement > ExpectedPlayers {
			continue
		}
		players = append(players, Player{Placement: placement, Name: name, Points: e.config.points(placement)})
		contributing = append(contributing, m.Tokens...)
	}
	sort.SliceStable(players, func(i, j int) bool { return players[i].Placement < players[j].Placement })

	if len(players) < e.config.MinPlayers {
		res.flag(CondInsufficientPlayers)
	}
	res.StructuredData.Players = players
	res.StructuredData.PlayerCount = len(players)
	res.Scores = Score(len(players), contributing)
}
