package scoreboard

import (
	"regexp"
	"strings"
)

// OCR rarely returns a player name clean: copyright-ish glyphs glued to the
// front, a stray letter fused to the clan tag, two words merged into one.
// normalizeName repairs the display form; deriveGameID turns it into the
// stable lowercase identifier used for roster lookups.

var (
	leadingSymbols  = regexp.MustCompile(`^[©®™@#$\s&()]+`)
	leadingSymbols2 = regexp.MustCompile(`^[@#$\s()]+`)
	camelBoundary   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymBoundary = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
	shortFragment   = regexp.MustCompile(`^[a-z]{1,2}\s+`)
	prefixFragment  = regexp.MustCompile(`(?i)^[a-z]{3,4}\s+[a-z]\s+([a-z].*)$`)
	trailingDigits  = regexp.MustCompile(`\s*\d+$`)
	trailingSymbols = regexp.MustCompile(`[©®™@#$]+$`)
	spaceRuns       = regexp.MustCompile(`\s+`)

	idStrip        = regexp.MustCompile(`[^a-z0-9_\s]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// normalizeName strips OCR artifacts from a raw name candidate:
// "& ©@ATRS Agatsuma" -> "ATRS Agatsuma", "ATRSAgatsuma" -> "ATRS Agatsuma",
// "BATRS Agatsuma" -> "ATRS Agatsuma" (stray B), while "BABA garou" keeps
// its repeated-letter tag intact.
func normalizeName(name string) string {
	cleaned := strings.TrimSpace(name)

	// Symbols arrive concatenated ("& ©@"), so strip in two passes.
	cleaned = leadingSymbols.ReplaceAllString(cleaned, "")
	cleaned = leadingSymbols2.ReplaceAllString(cleaned, "")

	// Re-insert the space OCR swallowed between two merged words.
	cleaned = camelBoundary.ReplaceAllString(cleaned, "$1 $2")
	cleaned = acronymBoundary.ReplaceAllString(cleaned, "$1 $2")

	// 1-2 letter lowercase fragments before the name ("ri", "d") are noise.
	if rest := shortFragment.ReplaceAllString(cleaned, ""); rest != "" {
		cleaned = rest
	}

	cleaned = stripStrayAcronymLetter(cleaned)

	// Longer junk like "San d " before the real name.
	if m := prefixFragment.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}

	cleaned = trailingDigits.ReplaceAllString(cleaned, "")
	cleaned = trailingSymbols.ReplaceAllString(cleaned, "")
	cleaned = spaceRuns.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// stripStrayAcronymLetter drops a single uppercase letter OCR fused onto an
// all-caps tag: "BATRS" -> "ATRS". Two guards keep legitimate tags alive:
// the leading letter must not recur in the remainder (so "BABA" survives),
// and the remainder must itself still look like a tag, at least 4 letters
// (so a clean "ATRS" is not shortened to "TRS").
func stripStrayAcronymLetter(s string) string {
	run := 0
	for run < len(s) && s[run] >= 'A' && s[run] <= 'Z' {
		run++
	}
	if run < 5 || (run < len(s) && s[run] != ' ') {
		return s
	}
	first, rest := s[0], s[1:run]
	if strings.ContainsRune(rest, rune(first)) {
		return s
	}
	return s[1:]
}

// deriveGameID maps a normalized display name to its roster identifier:
// lowercase, specials removed, spaces collapsed to single underscores.
// The derivation is idempotent: feeding an identifier back in returns it
// unchanged.
func deriveGameID(name string) string {
	s := strings.ToLower(name)
	s = idStrip.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

var (
	kdaLikeLine = regexp.MustCompile(`^\d+[\s/]+\d+[\s/]+\d+`)
	bareStat    = regexp.MustCompile(`(?i)^\d+[km]?$`)
	nameChars   = regexp.MustCompile("(?i)^([a-z0-9\\s`~!@#$%^&*()_\\-+=\\[\\]{}|\\\\:;\"'<>.,?/™©®]+)")

	// UI text the scoreboard always contains but that is never a name.
	skipLines = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(victory|defeat|win|lose)$`),
		regexp.MustCompile(`(?i)^(duration|battleid|battle id)`),
		regexp.MustCompile(`(?i)^(hero damage|turret damage|damage taken|teamfight)`),
		regexp.MustCompile(`(?i)^(ranked|classic|brawl|rank)$`),
		regexp.MustCompile(`(?i)^(level|rating|gold|gpm)$`),
	}
)

// extractPlayerName validates and normalizes one name candidate, returning
// the display name and its derived identifier. ok is false when the
// candidate is a stat line, UI text, or normalizes away to nothing.
func extractPlayerName(line string) (displayName, gameID string, ok bool) {
	cleaned := strings.TrimSpace(line)

	if kdaLikeLine.MatchString(cleaned) || bareStat.MatchString(cleaned) {
		return "", "", false
	}
	for _, re := range skipLines {
		if re.MatchString(cleaned) {
			return "", "", false
		}
	}

	cleaned = strings.TrimSpace(strings.TrimLeft(cleaned, "@#"))
	if len(cleaned) < 2 || len(cleaned) > 30 {
		return "", "", false
	}

	m := nameChars.FindStringSubmatch(cleaned)
	if m == nil || len(strings.TrimSpace(m[1])) < 2 {
		return "", "", false
	}

	displayName = normalizeName(strings.TrimSpace(m[1]))
	if len(displayName) < 2 {
		return "", "", false
	}
	gameID = deriveGameID(displayName)
	if gameID == "" {
		return "", "", false
	}
	return displayName, gameID, true
}
