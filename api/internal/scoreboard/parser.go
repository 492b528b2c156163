// Package scoreboard turns the raw OCR text of a post-match screenshot into
// a structured match record. Input is adversarial: inconsistent delimiters,
// glyph noise, both teams' rows concatenated onto one line. Every heuristic
// here is best-effort; the parser degrades to unset fields instead of
// failing, and only reports no-match when not a single player was found.
package scoreboard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Player is one detected scoreboard row.
type Player struct {
	GameUserID  string
	DisplayName string
	Hero        string
	K, D, A     int
	GPM         int
	DmgDealt    int
	DmgTaken    int
}

// Match is the parsed scoreboard. OwnerPartyIndices index into Players.
type Match struct {
	Result            string
	Mode              string
	PartySize         int
	Players           []Player
	OwnerPartyIndices []int
}

// Parser holds the immutable lookup tables a parse needs.
type Parser struct {
	heroes map[string]string
}

func NewParser(heroes map[string]string) *Parser {
	if heroes == nil {
		heroes = HeroAliases
	}
	return &Parser{heroes: heroes}
}

var defaultParser = NewParser(HeroAliases)

// Parse runs the default parser. See Parser.Parse.
func Parse(rawText string) *Match { return defaultParser.Parse(rawText) }

var modeKeywords = []string{"ranked", "classic", "brawl"}

// Parse converts raw OCR text into a Match. It returns nil when the text
// cannot be a scoreboard (fewer than two lines, or no player rows found);
// it never returns an error for malformed input.
func (p *Parser) Parse(rawText string) *Match {
	lines := splitLines(rawText)
	if len(lines) < 2 {
		return nil
	}

	result, found := detectOutcome(lines)

	var mode string
	var players []Player

	for i, line := range lines {
		lower := strings.ToLower(line)

		if mode == "" {
			for _, kw := range modeKeywords {
				if strings.Contains(lower, kw) {
					mode = kw
					break
				}
			}
		}

		if fromLine := extractPlayersFromLine(line); len(fromLine) > 0 {
			for _, c := range fromLine {
				players = append(players, Player{
					GameUserID:  c.gameUserID,
					DisplayName: c.displayName,
					K:           c.kda.K,
					D:           c.kda.D,
					A:           c.kda.A,
					GPM:         c.gold,
				})
			}
			continue
		}

		// Fallback: the line is a bare stat triple and the name sits on one
		// of the lines above it.
		kda, ok := extractKDA(lower)
		if !ok {
			continue
		}
		players = append(players, p.playerFromAdjacentLines(lines, i, kda, lower))
	}

	if len(players) == 0 {
		return nil
	}
	if !found {
		// Guessed fallback, not a verified result: a match with player data
		// but no readable banner is still worth keeping, and the outcome can
		// be corrected downstream.
		result = ResultWin
	}

	owner := ownerPartyIndices(len(players))
	return &Match{
		Result:            result,
		Mode:              mode,
		PartySize:         len(owner),
		Players:           players,
		OwnerPartyIndices: owner,
	}
}

// ownerPartyIndices marks which detected players belong to the uploader's
// party: positionally, the first five in parse order. OCR scoreboards list
// the owner's team first, but nothing verifies that here; this is the single
// place to swap in a real side-detection heuristic if the layout drifts.
func ownerPartyIndices(playerCount int) []int {
	n := playerCount
	if n > 5 {
		n = 5
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func splitLines(rawText string) []string {
	var lines []string
	for _, l := range strings.Split(rawText, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

var (
	heroWord    = regexp.MustCompile(`(?i)\b([a-z]{3,})\b`)
	gpmExplicit = regexp.MustCompile(`(?i)(\d+)\s*gpm`)
	bigNumber   = regexp.MustCompile(`\b(\d{4,6})\b`)
)

func (p *Parser) playerFromAdjacentLines(lines []string, i int, kda KDA, lower string) Player {
	var prev, prevPrev string
	if i > 0 {
		prev = lines[i-1]
	}
	if i > 1 {
		prevPrev = lines[i-2]
	}

	pl := Player{K: kda.K, D: kda.D, A: kda.A}

	if name, id, ok := extractPlayerName(prev); ok {
		pl.DisplayName, pl.GameUserID = name, id
	} else if name, id, ok := extractPlayerName(prevPrev); ok {
		pl.DisplayName, pl.GameUserID = name, id
	}

	hm := heroWord.FindStringSubmatch(prev)
	if hm == nil {
		hm = heroWord.FindStringSubmatch(prevPrev)
	}
	if hm != nil {
		if hero := p.normalizeHero(hm[1]); len(hero) >= 3 {
			pl.Hero = hero
		}
	}

	gm := gpmExplicit.FindStringSubmatch(lower)
	if gm == nil {
		gm = bigNumber.FindStringSubmatch(lower)
	}
	if gm != nil {
		pl.GPM, _ = strconv.Atoi(gm[1])
	}
	return pl
}

// ---- same-line extraction (strategy A) ----

type lineCandidate struct {
	displayName string
	gameUserID  string
	kda         KDA
	gold        int
}

var goldAfterKDA = regexp.MustCompile(`^[\s.\-:]+(\d{4,6})`)

// extractPlayersFromLine pulls every name+KDA pair out of one line. OCR
// often concatenates both teams' rows, so a single line can yield several
// players: each plausible triple is processed against the text between it
// and the previous triple.
func extractPlayersFromLine(line string) []lineCandidate {
	triples := extractAllKDAs(line)
	var out []lineCandidate

	for _, t := range triples {
		if hasTriple(out, t.kda) {
			continue
		}

		regionStart := 0
		for _, prev := range triples {
			if prev.start < t.start && prev.end > regionStart {
				regionStart = prev.end
			}
		}
		if regionStart > t.start {
			regionStart = t.start
		}
		before := strings.TrimSpace(line[regionStart:t.start])
		if before == "" {
			continue
		}

		name, ok := nameBeforeTriple(before)
		if !ok {
			continue
		}

		displayName, gameID, ok := extractPlayerName(name)
		if !ok {
			continue
		}

		c := lineCandidate{displayName: displayName, gameUserID: gameID, kda: t.kda}
		if gm := goldAfterKDA.FindStringSubmatch(line[t.end:]); gm != nil {
			c.gold, _ = strconv.Atoi(gm[1])
		}
		out = append(out, c)
	}
	return out
}

func hasTriple(found []lineCandidate, kda KDA) bool {
	for _, c := range found {
		if c.kda == kda {
			return true
		}
	}
	return false
}

// Ordered name-extraction strategies for the text preceding a triple. Each
// is tried in turn until one produces a candidate of plausible length; the
// cascade stays legible and each step is testable on its own.
var nameStrategies = []struct {
	name string
	fn   func(string) (string, bool)
}{
	{"marker", nameAfterMarker},
	{"capital", nameFromCapital},
	{"colon", nameBeforeColon},
	{"lastWord", nameFromLastWord},
}

func nameBeforeTriple(before string) (string, bool) {
	for _, s := range nameStrategies {
		candidate, ok := s.fn(before)
		if !ok {
			continue
		}
		candidate = strings.TrimSpace(trailingDigits.ReplaceAllString(candidate, ""))
		if len(candidate) >= 2 && len(candidate) <= 30 {
			return candidate, true
		}
	}
	return "", false
}

var (
	markerName    = regexp.MustCompile(`@\s*([^\d@\s][^\d@]{1,28}?)\s*$`)
	capitalName   = regexp.MustCompile(`([A-Z][A-Za-z0-9 ]{2,30})\s*$`)
	anyLetterName = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 ]{2,30})\s*$`)
	colonName     = regexp.MustCompile(`([A-Za-z][A-Za-z0-9 ]{1,28}?)\s*:`)
	wordToken     = regexp.MustCompile(`[A-Za-z][A-Za-z0-9 ]{1,28}`)
	fillerWord    = regexp.MustCompile(`(?i)^(a|an|the|is|at|on|in|to|for|of|and|or|but)$`)
)

// nameAfterMarker: "@ PlayerName", "& ©@PlayerName". The marker glyph sits
// directly before the name.
func nameAfterMarker(before string) (string, bool) {
	if m := markerName.FindStringSubmatch(before); m != nil {
		return m[1], true
	}
	return "", false
}

// nameFromCapital: the last run starting with an uppercase letter, falling
// back to any letter ("BATRS Agatsuma", "rus perbasmikuman").
func nameFromCapital(before string) (string, bool) {
	if m := capitalName.FindStringSubmatch(before); m != nil {
		return m[1], true
	}
	if m := anyLetterName.FindStringSubmatch(before); m != nil {
		return m[1], true
	}
	return "", false
}

// nameBeforeColon: "PlayerName: 5/2/8" style rows.
func nameBeforeColon(before string) (string, bool) {
	if m := colonName.FindStringSubmatch(before); m != nil {
		return m[1], true
	}
	return "", false
}

// nameFromLastWord: most permissive, takes the last word-like token that is
// not obvious filler.
func nameFromLastWord(before string) (string, bool) {
	var last string
	for _, w := range wordToken.FindAllString(before, -1) {
		w = strings.TrimSpace(w)
		if len(w) < 2 || len(w) > 30 || fillerWord.MatchString(w) {
			continue
		}
		last = w
	}
	return last, last != ""
}

// String returns a compact debug form.
func (m *Match) String() string {
	if m == nil {
		return "no match"
	}
	return fmt.Sprintf("%s %s, %d players, party %d", m.Result, m.Mode, len(m.Players), m.PartySize)
}
