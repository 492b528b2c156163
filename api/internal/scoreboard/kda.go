package scoreboard

import (
	"regexp"
	"strconv"
)

// KDA is one player's kills/deaths/assists triple.
type KDA struct {
	K int
	D int
	A int
}

// Components above this are OCR noise (a timestamp, gold, a battle ID),
// not a kill count.
const maxKDAComponent = 100

// Triples tolerate any mix of separators the OCR produces:
// "5/2/8", "5-2-8", "5:2:8", "5 2 8" and combinations thereof.
var kdaPattern = regexp.MustCompile(`(\d+)[\s/:-]+(\d+)[\s/:-]+(\d+)`)

type tripleMatch struct {
	kda   KDA
	start int
	end   int
}

func (t KDA) valid() bool {
	return t.K <= maxKDAComponent && t.D <= maxKDAComponent && t.A <= maxKDAComponent
}

// extractKDA returns the first plausible triple in text.
func extractKDA(text string) (KDA, bool) {
	for _, t := range extractAllKDAs(text) {
		return t.kda, true
	}
	return KDA{}, false
}

// extractAllKDAs returns every non-overlapping plausible triple in text,
// in order of appearance. Triples with an out-of-range component are
// skipped but still consume their span, matching how a global regex scan
// advances.
func extractAllKDAs(text string) []tripleMatch {
	var out []tripleMatch
	for _, m := range kdaPattern.FindAllStringSubmatchIndex(text, -1) {
		k, _ := strconv.Atoi(text[m[2]:m[3]])
		d, _ := strconv.Atoi(text[m[4]:m[5]])
		a, _ := strconv.Atoi(text[m[6]:m[7]])
		kda := KDA{K: k, D: d, A: a}
		if !kda.valid() {
			continue
		}
		out = append(out, tripleMatch{kda: kda, start: m[0], end: m[1]})
	}
	return out
}
