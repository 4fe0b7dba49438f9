package standings

import "errors"

// ErrNoTextDetected is returned when no usable token survives ingestion.
var ErrNoTextDetected = errors.New("no text detected")

// Condition marks a non-fatal degradation recorded on a Result.
type Condition string

const (
	// CondAmbiguousFormat: the layout looked columned but too few placements were
	// recoverable, so Y-ordered inference ran instead.
	CondAmbiguousFormat Condition = "ambiguous_format"
	// CondInsufficientPlayers: fewer than Config.MinPlayers players were recovered.
	CondInsufficientPlayers Condition = "insufficient_players"
	// CondUnmatchedPlacement: at least one placement had no name within reach.
	// It is informational and does not lower confidence on its own.
	CondUnmatchedPlacement Condition = "unmatched_placement"
)
