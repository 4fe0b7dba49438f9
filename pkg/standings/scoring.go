package standings

import "math"

// Scores summarizes how much a Result can be trusted. Every field is in [0,1].
type Scores struct {
	Character  float64 `json:"character"`
	Structural float64 `json:"structural"`
	Overall    float64 `json:"overall"`
}

// StructuralConfidence rates how close n is to a full lobby.
func StructuralConfidence(n int) float64 {
	switch n {
	case ExpectedPlayers:
		return 1.0
	case ExpectedPlayers - 1:
		return 0.9
	case ExpectedPlayers - 2:
		return 0.7
	}
	return math.Max(0.3, float64(n)/ExpectedPlayers)
}

// Score blends the mean confidence of the tokens behind the players with the
// structural confidence of the player count.
func Score(players int, contributing []Token) Scores {
	var char float64
	if len(contributing) > 0 {
		sum := 0.0
		for _, t := range contributing {
			sum += t.Confidence
		}
		char = sum / float64(len(contributing))
	}
	structural := StructuralConfidence(players)
	return Scores{
		Character:  char,
		Structural: structural,
		Overall:    0.4*char + 0.6*structural,
	}
}
