package amdm

import (
	"strings"
)

// processTextLines keeps lyric lines and section breaks, dropping chord
// separators, comments and stray quiz markers
func (p *Parser) processTextLines(cleanText string) string {
	lines := strings.Split(cleanText, "\n")
	var processedLines []string

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		if trimmedLine == "" {
			continue
		}

		if strings.HasPrefix(trimmedLine, "[") {
			processedLines = p.handleSectionMarker(trimmedLine, processedLines)
			continue
		}

		if separatorRegex.MatchString(trimmedLine) {
			continue
		}

		cleanLine := commentArtifactRegex.ReplaceAllString(trimmedLine, "")
		// a literal asterisk would turn into a quiz gap
		cleanLine = strings.ReplaceAll(cleanLine, "*", "")
		cleanLine = strings.ReplaceAll(cleanLine, "/", "")
		cleanLine = strings.TrimSpace(cleanLine)

		if cleanLine != "" {
			processedLines = append(processedLines, cleanLine)
		}
	}

	return p.finalCleanup(strings.Join(processedLines, "\n"))
}

func (p *Parser) handleSectionMarker(trimmedLine string, processedLines []string) []string {
	for _, section := range p.config.AllowedSections {
		marker := "[" + string(section) + "]"
		if !strings.HasPrefix(trimmedLine, marker) {
			continue
		}
		processedLines = append(processedLines, "")
		if p.config.KeepSectionMarkers {
			processedLines = append(processedLines, marker+":")
		}
		return processedLines
	}

	for _, section := range p.config.UnwantedSections {
		if strings.HasPrefix(trimmedLine, "["+string(section)+"]") {
			return append(processedLines, "", "")
		}
	}

	return processedLines
}
