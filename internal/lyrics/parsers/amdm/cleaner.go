package amdm

import (
	"strings"
)

// finalCleanup caps blank runs and trims the result
func (p *Parser) finalCleanup(lyrics string) string {
	for _, section := range p.config.UnwantedSections {
		lyrics = strings.ReplaceAll(lyrics, "["+string(section)+"]:", "\n\n")
	}

	lyrics = p.rules.excessBreaks.ReplaceAllString(lyrics, p.rules.breaks)

	return strings.TrimSpace(lyrics)
}
