package amdm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sukalov/lyricsquiz/internal/logger"
)

const chordsBlockSelector = `pre[itemprop="chordsBlock"].field__podbor_new.podbor__text`

var ErrNoChordsBlock = errors.New("could not find target element with chords and lyrics")

// Parser handles the HTML parsing and lyrics extraction
type Parser struct {
	client *Client
	config ProcessingConfig
	rules  rules
}

// NewParser creates a new AmDm parser
func NewParser() *Parser {
	return NewParserWithConfig(NewClient(), DefaultConfig())
}

func NewParserWithConfig(client *Client, config ProcessingConfig) *Parser {
	return &Parser{
		client: client,
		config: config,
		rules:  compileRules(config),
	}
}

// ExtractLyricsFromAmdm fetches an AmDm.ru page and extracts its lyrics
func (p *Parser) ExtractLyricsFromAmdm(ctx context.Context, url string) (*LyricsResult, error) {
	logger.Debug(fmt.Sprintf("ExtractLyricsFromAmdm: Fetching page %s", url))

	html, err := p.client.FetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	logger.Debug(fmt.Sprintf("ExtractLyricsFromAmdm: Successfully fetched page %s (HTML length: %d chars)", url, len(html)))

	result, err := p.Extract(html)
	if err != nil {
		logger.Error(fmt.Sprintf("ExtractLyricsFromAmdm: %v\nURL: %s", err, url))
		return nil, err
	}
	result.URL = url

	logger.Success(fmt.Sprintf("ExtractLyricsFromAmdm: extracted %q from %s (%d chars)", result.Title, url, len(result.Text)))
	return result, nil
}

// Extract pulls the title and the plain lyrics out of a song page
func (p *Parser) Extract(html string) (*LyricsResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	selection := doc.Find(chordsBlockSelector)
	if selection.Length() == 0 {
		return nil, ErrNoChordsBlock
	}

	originalHtml, err := selection.First().Html()
	if err != nil {
		return nil, fmt.Errorf("failed to read chords block: %w", err)
	}

	text, err := p.processHtmlContent(originalHtml)
	if err != nil {
		return nil, err
	}

	return &LyricsResult{
		Title:     pageTitle(doc),
		Text:      text,
		FetchedAt: time.Now(),
	}, nil
}

func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	title = strings.TrimSpace(strings.TrimSuffix(title, "аккорды"))
	return strings.Join(strings.Fields(title), " ")
}
