package amdm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	chordRegex           = regexp.MustCompile(`<div[^>]*class="podbor__chord"[^>]*>.*?</div>`)
	authorCommentRegex   = regexp.MustCompile(`<span[^>]*class="podbor__author-comment"[^>]*>.*?</span>`)
	commentRegex         = regexp.MustCompile(`/\*[^*]*\*/`)
	danglingCommentRegex = regexp.MustCompile(`(?m)/\*.*$`)
	separatorRegex       = regexp.MustCompile(`^[\s|]*$`)
	commentArtifactRegex = regexp.MustCompile(`/\*[^*]*\*?`)
)

// rules are the config dependent expressions, compiled once per parser
type rules struct {
	unwantedKeyword *regexp.Regexp
	unwantedText    *regexp.Regexp
	excessBreaks    *regexp.Regexp
	breaks          string
}

func compileRules(config ProcessingConfig) rules {
	names := make([]string, 0, len(config.UnwantedSections))
	for _, s := range config.UnwantedSections {
		names = append(names, regexp.QuoteMeta(string(s)))
	}
	alternation := strings.Join(names, "|")
	if alternation == "" {
		// matches nothing
		alternation = `[^\s\S]`
	}

	maxBreaks := config.MaxLineBreaks
	if maxBreaks < 1 {
		maxBreaks = 1
	}

	return rules{
		unwantedKeyword: regexp.MustCompile(`<div[^>]*class="podbor__keyword"[^>]*>\s*\[(` + alternation + `)\][^<]*</div>`),
		unwantedText:    regexp.MustCompile(`[ \t]*\[(` + alternation + `)\][^<\n]*`),
		excessBreaks:    regexp.MustCompile(fmt.Sprintf(`\n{%d,}`, maxBreaks+1)),
		breaks:          strings.Repeat("\n", maxBreaks),
	}
}

// processHtmlContent turns the chords block markup into plain lyrics
func (p *Parser) processHtmlContent(originalHtml string) (string, error) {
	processedHtml := chordRegex.ReplaceAllString(originalHtml, "\n\n")
	processedHtml = authorCommentRegex.ReplaceAllString(processedHtml, "")
	processedHtml = commentRegex.ReplaceAllString(processedHtml, "")
	processedHtml = danglingCommentRegex.ReplaceAllString(processedHtml, "")
	processedHtml = p.rules.unwantedKeyword.ReplaceAllString(processedHtml, "\n\n")
	processedHtml = p.rules.unwantedText.ReplaceAllString(processedHtml, "\n\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(processedHtml))
	if err != nil {
		return "", fmt.Errorf("failed to parse chords block: %w", err)
	}

	return p.processTextLines(doc.Text()), nil
}
