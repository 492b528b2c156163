// Package identity matches players parsed from a scoreboard against the
// chat's known roster. OCR mangles names, so matching is fuzzy: several
// similarity views are computed and the most optimistic one wins.
package identity

import (
	"regexp"
	"strings"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]`)
	nonAlpha = regexp.MustCompile(`[^a-z]`)

	knownClanTags = []string{"atrs", "baba", "rrq", "evos", "onic", "blck", "echo", "btr", "aura", "geek"}
)

func normalizeKey(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// levenshtein computes edit distance over runes with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// editRatio maps edit distance into [0,1]. Two empty strings are identical.
func editRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// editSimilarity compares the alphanumeric cores of both names.
func editSimilarity(a, b string) float64 {
	return editRatio(normalizeKey(a), normalizeKey(b))
}

// looseSimilarity also drops digits, which OCR frequently invents.
func looseSimilarity(a, b string) float64 {
	return editRatio(nonAlpha.ReplaceAllString(strings.ToLower(a), ""), nonAlpha.ReplaceAllString(strings.ToLower(b), ""))
}

// containmentSimilarity scores one name being a substring of the other,
// as when OCR drops a clan tag. Capped below the exact-match range so a
// containment hit can never outrank a near-perfect edit score.
func containmentSimilarity(a, b string) float64 {
	na, nb := normalizeKey(a), normalizeKey(b)
	if na == "" || nb == "" {
		return 0
	}
	if !strings.Contains(na, nb) && !strings.Contains(nb, na) {
		return 0
	}
	shorter, longer := len(na), len(nb)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	score := float64(shorter) / float64(longer)
	if score > 0.85 {
		score = 0.85
	}
	return score
}

// coreSimilarity compares names with known clan tags stripped, so
// "atrs_agatsuma" still matches a bare "agatsuma".
func coreSimilarity(a, b string) float64 {
	ca, cb := stripClanTag(normalizeKey(a)), stripClanTag(normalizeKey(b))
	if len(ca) <= 2 || len(cb) <= 2 {
		return 0
	}
	return editRatio(ca, cb)
}

func stripClanTag(s string) string {
	for _, tag := range knownClanTags {
		if strings.HasPrefix(s, tag) && len(s) > len(tag) {
			return s[len(tag):]
		}
		if strings.HasSuffix(s, tag) && len(s) > len(tag) {
			return s[:len(s)-len(tag)]
		}
	}
	return s
}

// Similarity returns the best score across all comparison views.
func Similarity(a, b string) float64 {
	best := editSimilarity(a, b)
	if s := looseSimilarity(a, b); s > best {
		best = s
	}
	if s := containmentSimilarity(a, b); s > best {
		best = s
	}
	if s := coreSimilarity(a, b); s > best {
		best = s
	}
	return best
}
