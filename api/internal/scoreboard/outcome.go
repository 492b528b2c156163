package scoreboard

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	ResultWin  = "win"
	ResultLose = "lose"
)

// Only the top of the screen carries the result banner.
const outcomeScanLines = 5

var (
	// "26 VICTORY 19", "26 V 19", and the OCR-corrupted "26 B 19" where the
	// V of Victory came back as B.
	victoryScore = regexp.MustCompile(`(?i)(\d+)\s*(?:victory|v|b)\s*[.=-]?\s*(\d+)`)
	defeatScore  = regexp.MustCompile(`(?i)(?:defeat|d)\s*(\d+)\s*[.=-]?\s*(\d+)`)
	bareScore    = regexp.MustCompile(`(?i)(\d+)\s*[.=vs-]\s*(\d+)`)
	scoreMarker  = regexp.MustCompile(`(?i)[bv]\s*\d`)
)

// detectOutcome scans the first lines for the match result. Keyword hits win
// outright and stop the scan; a bare score pair is only a tie-break guess
// (larger number = winning side) and a later line may still override it.
func detectOutcome(lines []string) (string, bool) {
	result := ""
	for i := 0; i < len(lines) && i < outcomeScanLines; i++ {
		line := lines[i]
		lower := strings.ToLower(line)

		if strings.Contains(lower, "victory") || strings.Contains(lower, "win") {
			return ResultWin, true
		}
		if strings.Contains(lower, "defeat") || strings.Contains(lower, "lose") {
			return ResultLose, true
		}

		if victoryScore.MatchString(line) {
			return ResultWin, true
		}
		if defeatScore.MatchString(line) {
			return ResultLose, true
		}

		m := bareScore.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		s1, _ := strconv.Atoi(m[1])
		s2, _ := strconv.Atoi(m[2])
		switch {
		case scoreMarker.MatchString(line) && s1 > s2:
			return ResultWin, true
		case s1 > s2:
			result = ResultWin
		case s2 > s1:
			result = ResultLose
		}
	}
	return result, result != ""
}
