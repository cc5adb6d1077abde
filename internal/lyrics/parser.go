package lyrics

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMarker         = '*'
	DefaultPrefix         = "mot"
	DefaultMaxDistractors = 2
)

// Parser turns lyrics with marked words into a ParsedLyrics model
type Parser struct {
	Marker         rune
	Prefix         string
	MaxDistractors int

	// shuffle permutes option order; nil means math/rand/v2.Shuffle
	shuffle func(n int, swap func(i, j int))
}

// NewParser creates a parser with the default marker, id prefix and distractor count
func NewParser() *Parser {
	return &Parser{
		Marker:         DefaultMarker,
		Prefix:         DefaultPrefix,
		MaxDistractors: DefaultMaxDistractors,
	}
}

var defaultParser = NewParser()

// Parse parses text with the default parser
func Parse(text string) ParsedLyrics {
	return defaultParser.Parse(text)
}

// Parse never fails: malformed input degrades to plain text segments.
// Every call starts from text alone, nothing is carried over between calls.
func (p *Parser) Parse(text string) ParsedLyrics {
	result := ParsedLyrics{
		Segments: []Segment{},
		Words:    []Word{},
	}

	lines := strings.Split(text, "\n")
	ordinal := 0
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		result.Segments = p.appendLine(result.Segments, line, &ordinal)
		if i < len(lines)-1 {
			result.Segments = append(result.Segments, NewlineSegment())
		}
	}

	result.Words = p.buildWords(text, result.Segments)
	return result
}

// appendLine splits a line into whitespace and non-whitespace runs so that
// concatenating them gives the line back unchanged
func (p *Parser) appendLine(segments []Segment, line string, ordinal *int) []Segment {
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			segments = append(segments, TextSegment(text.String()))
			text.Reset()
		}
	}

	for _, run := range splitRuns(line) {
		word, ok := p.hiddenWord(run)
		if !ok {
			text.WriteString(run)
			continue
		}
		flush()
		*ordinal++
		segments = append(segments, GapSegment(p.prefix()+strconv.Itoa(*ordinal), word))
	}
	flush()

	return segments
}

// hiddenWord reports whether token ends with the marker and returns the word
// to hide. "*word*" hides "word"; any other punctuation is kept.
// The leading marker of "*word*" is dropped too, so Text gives back "word".
func (p *Parser) hiddenWord(token string) (string, bool) {
	marker := string(p.marker())
	if !strings.HasSuffix(token, marker) || utf8.RuneCountInString(token) < 2 {
		return "", false
	}

	word := strings.TrimSuffix(token, marker)
	if strings.HasPrefix(word, marker) && utf8.RuneCountInString(word) > 1 {
		word = strings.TrimPrefix(word, marker)
	}
	return word, true
}

func (p *Parser) buildWords(text string, segments []Segment) []Word {
	var distinct []string
	seen := make(map[string]bool)
	for _, seg := range segments {
		if seg.Type == SegmentGap && !seen[seg.answer] {
			seen[seg.answer] = true
			distinct = append(distinct, seg.answer)
		}
	}

	// Distractor draws are seeded from the text so that parsing the same
	// lyrics twice offers the same option set; only the order changes.
	seed := textSeed(text)
	words := []Word{}
	ordinal := 0
	for _, seg := range segments {
		if seg.Type != SegmentGap {
			continue
		}
		ordinal++

		draw := rand.New(rand.NewPCG(seed, uint64(ordinal)))
		options := append([]string{seg.answer}, drawDistractors(draw, distinct, seg.answer, p.maxDistractors())...)
		p.shuffleFunc()(len(options), func(i, j int) {
			options[i], options[j] = options[j], options[i]
		})

		words = append(words, Word{
			ID:      seg.WordID,
			Answer:  seg.answer,
			Options: options,
		})
	}

	return words
}

// drawDistractors picks up to n distinct words other than answer with a
// partial Fisher-Yates pass over the pool
func drawDistractors(r *rand.Rand, distinct []string, answer string, n int) []string {
	pool := make([]string, 0, len(distinct))
	for _, w := range distinct {
		if w != answer {
			pool = append(pool, w)
		}
	}

	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func splitRuns(line string) []string {
	var runs []string
	start := 0
	prevSpace := false
	for i, r := range line {
		space := unicode.IsSpace(r)
		if i > start && space != prevSpace {
			runs = append(runs, line[start:i])
			start = i
		}
		prevSpace = space
	}
	if start < len(line) {
		runs = append(runs, line[start:])
	}
	return runs
}

func textSeed(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}

func (p *Parser) marker() rune {
	if p.Marker == 0 {
		return DefaultMarker
	}
	return p.Marker
}

func (p *Parser) prefix() string {
	if p.Prefix == "" {
		return DefaultPrefix
	}
	return p.Prefix
}

func (p *Parser) maxDistractors() int {
	if p.MaxDistractors < 0 {
		return 0
	}
	return p.MaxDistractors
}

func (p *Parser) shuffleFunc() func(n int, swap func(i, j int)) {
	if p.shuffle != nil {
		return p.shuffle
	}
	return rand.Shuffle
}
