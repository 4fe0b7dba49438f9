package standings

import "regexp"

// denylist holds case-folded UI chrome and rank-tier words that OCR regularly
// reports from standings screens. Entries are matched exactly.
var denylist = map[string]struct{}{
	// tournament chrome
	"standings": {}, "standing": {}, "placement": {}, "placements": {}, "place": {},
	"player": {}, "players": {}, "name": {}, "points": {}, "pts": {}, "point": {},
	"score": {}, "scores": {}, "total": {}, "round": {}, "game": {}, "games": {},
	"lobby": {}, "tournament": {}, "results": {}, "result": {}, "rank": {},
	"ranked": {}, "stage": {}, "level": {}, "damage": {}, "continue": {},
	"exit": {}, "leave": {}, "play again": {}, "victory": {}, "defeat": {},
	"eliminated": {}, "you": {}, "top": {}, "top 4": {}, "lp": {}, "unranked": {},
	"final": {}, "finals": {}, "match": {}, "history": {}, "details": {},
	// rank tiers
	"iron": {}, "bronze": {}, "silver": {}, "gold": {}, "platinum": {},
	"emerald": {}, "diamond": {}, "master": {}, "grandmaster": {}, "challenger": {},
}

var (
	// rankGlyphRE matches a rank-tier abbreviation on its own: a tier letter with
	// a division (E2, D4) or an apex-tier letter (M, GM, C).
	rankGlyphRE = regexp.MustCompile(`^(?:[IBSGPED][1-4]|GM|M|C)$`)
	// rankPrefixRE matches a rank glyph glued in front of a name by OCR.
	rankPrefixRE = regexp.MustCompile(`^(?:[IBSGPED][1-4]|GM|M|C)\s+(\S.*)$`)

	// placementRE accepts 1, #1, P1 and ordinal 1ST..8TH.
	placementRE = regexp.MustCompile(`^(?:#?([1-8])|P([1-8])|([1-8])(?:ST|ND|RD|TH))$`)

	// scoreArtifactRE catches ratios like 0/3 or 12 / 40.
	scoreArtifactRE = regexp.MustCompile(`\d\s*/\s*\d`)
	// pointsArtifactRE catches point and LP readouts such as "8 PTS" or "+35 LP".
	pointsArtifactRE = regexp.MustCompile(`^[+-]?\d+\s*(?:PTS?|POINTS?|LP)$`)

	// garbageRE matches glyph misreads that never belong in a name.
	garbageRE = regexp.MustCompile("[\\[\\]{}|()<>\\\\`~^*\"]")
)

// confusions maps digits OCR emits in place of letters. They are only
// replaced when sandwiched between two letters.
var confusions = map[rune]rune{
	'0': 'O',
	'1': 'I',
	'3': 'E',
	'5': 'S',
	'8': 'B',
}

// knownCorrections holds hand-verified whole-name fixes, keyed by the
// upper-cased, whitespace-collapsed OCR reading.
var knownCorrections = map[string]string{
	"DEEPESTREGRET5": "DEEPESTREGRETS",
	"DEEPESTREGRETZ": "DEEPESTREGRETS",
	"LYMER4":         "LYMERA",
	"LYNERA":         "LYMERA",
	"FF0XFACF":       "FFOXFACE",
	"FFOXFACF":       "FFOXFACE",
	"0TTERPOP":       "OTTERPOP",
	"5OJU":           "SOJU",
	"K1NGCRAB":       "KINGCRAB",
	"VVOLFPACK":      "WOLFPACK",
	"RN0RGAN":        "MORGAN",
}

// mergedWords splits known concatenations that OCR produces when it drops the
// space of a multi-word name. Keys are upper case, values are the split form.
var mergedWords = map[string]string{
	"THEBIGONE":      "THE BIG ONE",
	"KINGOFTHEHILL":  "KING OF THE HILL",
	"NOTAPRO":        "NOT A PRO",
	"SALTANDPEPPER":  "SALT AND PEPPER",
	"LORDOFTHEBOARD": "LORD OF THE BOARD",
	"MRBEAN":         "MR BEAN",
	"BIGBRAIN":       "BIG BRAIN",
	"SIRROLLSALOT":   "SIR ROLLS A LOT",
}

// lowerWords stay lower case when they appear between two other words.
var lowerWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "de": {}, "la": {}, "van": {}, "von": {},
}
