package identity

import "regexp"

// Candidate is one roster entry a parsed player may correspond to.
type Candidate struct {
	GameUserID  string
	DisplayName string
}

type MatchKind int

const (
	NoMatch MatchKind = iota
	ExactMatch
	FuzzyMatch
)

// Outcome is the result of resolving one parsed player against a roster.
type Outcome struct {
	Kind       MatchKind
	Candidate  Candidate
	Similarity float64
}

// DefaultThreshold is the minimum similarity for a fuzzy match. Below it
// the parsed player is treated as someone new.
const DefaultThreshold = 0.65

// Resolve finds the roster entry for a parsed player. An exact identifier
// match wins immediately; otherwise the candidate with the highest
// similarity at or above threshold is chosen. Ties keep the earliest
// candidate, so resolution is deterministic for a fixed roster order.
func Resolve(targetID, targetName string, roster []Candidate, threshold float64) Outcome {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	for _, c := range roster {
		if c.GameUserID == targetID {
			return Outcome{Kind: ExactMatch, Candidate: c, Similarity: 1}
		}
	}

	best := Outcome{Kind: NoMatch}
	for _, c := range roster {
		score := Similarity(targetID, c.GameUserID)
		if targetName != "" && c.DisplayName != "" {
			if s := Similarity(targetName, c.DisplayName); s > score {
				score = s
			}
		}
		if score >= threshold && score > best.Similarity {
			best = Outcome{Kind: FuzzyMatch, Candidate: c, Similarity: score}
		}
	}
	return best
}

var specialChars = regexp.MustCompile(`(?i)[^a-z0-9\s]`)

// PreferName reports whether candidate is a better display form than
// current. Fewer OCR artifact characters wins; on a tie the shorter name
// wins, since OCR errors add glyphs far more often than they drop them.
func PreferName(candidate, current string) bool {
	if candidate == "" {
		return false
	}
	if current == "" {
		return true
	}
	cNoise := len(specialChars.FindAllString(candidate, -1))
	uNoise := len(specialChars.FindAllString(current, -1))
	if cNoise != uNoise {
		return cNoise < uNoise
	}
	return len(candidate) < len(current)
}
