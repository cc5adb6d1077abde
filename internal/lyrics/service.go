package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/lyrics/parsers/amdm"
)

var ErrUnsupportedSource = errors.New("unsupported URL source")

// LyricsResult represents the result of lyrics extraction. Text carries no
// gap markers yet.
type LyricsResult struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Service handles lyrics extraction for different sources
type Service struct {
	amdmParser *amdm.Parser
}

// NewService creates a new lyrics service
func NewService() *Service {
	return &Service{
		amdmParser: amdm.NewParser(),
	}
}

// ExtractLyrics extracts lyrics from a URL based on the source
func (s *Service) ExtractLyrics(ctx context.Context, rawURL string) (*LyricsResult, error) {
	logger.Debug(fmt.Sprintf("ExtractLyrics called with URL: %s", rawURL))

	if isAmdm(rawURL) {
		return s.extractFromAmdm(ctx, rawURL)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, rawURL)
}

// isAmdm accepts https links to amdm.ru or one of its subdomains only.
// The link is fetched server side, so a look-alike host or a mention of
// amdm.ru in the path or query is not enough.
func isAmdm(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme != "https" || u.User != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "amdm.ru" || strings.HasSuffix(host, ".amdm.ru")
}

func (s *Service) extractFromAmdm(ctx context.Context, rawURL string) (*LyricsResult, error) {
	result, err := s.amdmParser.ExtractLyricsFromAmdm(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, err
	}

	return &LyricsResult{
		URL:       result.URL,
		Title:     result.Title,
		Text:      result.Text,
		Source:    "amdm.ru",
		FetchedAt: result.FetchedAt,
	}, nil
}
