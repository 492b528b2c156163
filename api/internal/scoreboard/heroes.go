package scoreboard

import "strings"

// HeroAliases maps lowercased OCR spellings to canonical hero names. The
// table is read-only after init; parsers never mutate it.
var HeroAliases = map[string]string{
	"layla":   "Layla",
	"miya":    "Miya",
	"alucard": "Alucard",
	"eudora":  "Eudora",
	"tigreal": "Tigreal",
	"fanny":   "Fanny",
	"yin":     "Yin",
}

func (p *Parser) normalizeHero(name string) string {
	if canon, ok := p.heroes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canon
	}
	return name
}
