package artifact

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/sukalov/lyricsquiz/internal/audio"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
)

var (
	//go:embed assets/template.html
	pageTemplate string
	//go:embed assets/runtime.js
	runtimeJS string
	//go:embed assets/styles.css
	stylesCSS string
)

var page = template.Must(template.New("game").Parse(pageTemplate))

// Payload is the data block the embedded runtime reads at load time
type Payload struct {
	Words []lyrics.Word `json:"words"`
	UI    scoring.UI    `json:"ui"`
}

// Piece is either a run of lyrics text or a gap handle inside a paragraph
type Piece struct {
	Text string
	Gap  string
}

type mediaSource struct {
	URL  template.URL
	MIME string
}

type view struct {
	Lang        string
	Title       string
	UI          scoring.UI
	WordsToFind string
	Paragraphs  [][]Piece
	Audio       *mediaSource
	Payload     template.JS
	Script      template.JS
	Style       template.CSS
}

// Generate renders a self-contained game document with the default UI strings
func Generate(title string, model lyrics.ParsedLyrics, src *audio.Source) string {
	return GenerateWithUI(title, model, src, scoring.DefaultUI())
}

// GenerateWithUI renders the game document. Only the word table travels in
// the data payload; the markup holds nothing but gap handles.
func GenerateWithUI(title string, model lyrics.ParsedLyrics, src *audio.Source, ui scoring.UI) string {
	payload, err := json.Marshal(NewPayload(model, ui))
	if err != nil {
		panic(fmt.Sprintf("artifact: failed to encode payload: %v", err))
	}

	v := view{
		Lang:        lang(ui.Locale),
		Title:       title,
		UI:          ui,
		WordsToFind: ui.WordsToFindText(len(model.Words)),
		Paragraphs:  Paragraphs(model.Segments),
		Audio:       media(src),
		// json.Marshal escapes <, > and & so the block cannot close the script element
		Payload: template.JS(payload),
		Script:  template.JS(runtimeJS),
		Style:   template.CSS(stylesCSS),
	}

	var b strings.Builder
	if err := page.Execute(&b, v); err != nil {
		panic(fmt.Sprintf("artifact: failed to render page: %v", err))
	}
	return b.String()
}

// NewPayload copies the word table so the encoded form never holds null options
func NewPayload(model lyrics.ParsedLyrics, ui scoring.UI) Payload {
	words := make([]lyrics.Word, 0, len(model.Words))
	for _, w := range model.Words {
		options := append([]string{}, w.Options...)
		words = append(words, lyrics.Word{ID: w.ID, Answer: w.Answer, Options: options})
	}
	return Payload{Words: words, UI: ui}
}

// Paragraphs groups segments into paragraphs. Empty paragraphs produced by
// consecutive or boundary newlines are dropped, as are whitespace-only ones.
func Paragraphs(segments []lyrics.Segment) [][]Piece {
	paragraphs := [][]Piece{}
	var current []Piece

	flush := func() {
		if !blank(current) {
			paragraphs = append(paragraphs, current)
		}
		current = nil
	}

	for _, seg := range segments {
		switch seg.Type {
		case lyrics.SegmentText:
			current = append(current, Piece{Text: seg.Content})
		case lyrics.SegmentGap:
			current = append(current, Piece{Gap: seg.WordID})
		case lyrics.SegmentNewline:
			flush()
		}
	}
	flush()

	return paragraphs
}

func blank(pieces []Piece) bool {
	for _, p := range pieces {
		if p.Gap != "" || strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}

func media(src *audio.Source) *mediaSource {
	if src == nil {
		return nil
	}
	checked, err := audio.ParseDataURI(src.DataURI())
	if err != nil {
		return nil
	}
	return &mediaSource{URL: template.URL(checked.DataURI()), MIME: checked.MIME}
}

func lang(locale string) string {
	tag, _, _ := strings.Cut(locale, "-")
	if tag == "" {
		return "fr"
	}
	return strings.ToLower(tag)
}
