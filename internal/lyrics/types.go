package lyrics

import "strings"

// SegmentType tags the variant held by a Segment
type SegmentType string

const (
	SegmentText    SegmentType = "text"
	SegmentGap     SegmentType = "gap"
	SegmentNewline SegmentType = "newline"
)

// Segment represents one piece of the lyrics in original order
type Segment struct {
	Type    SegmentType `json:"type"`
	Content string      `json:"content,omitempty"`
	WordID  string      `json:"wordId,omitempty"`

	// answer is only known to the parser; renderers read answers from Words.
	answer string
}

func TextSegment(content string) Segment {
	return Segment{Type: SegmentText, Content: content}
}

func GapSegment(wordID, answer string) Segment {
	return Segment{Type: SegmentGap, WordID: wordID, answer: answer}
}

func NewlineSegment() Segment {
	return Segment{Type: SegmentNewline}
}

// Answer returns the hidden word of a gap segment
func (s Segment) Answer() string {
	return s.answer
}

// Word represents a single fill-in-the-blank question
type Word struct {
	ID      string   `json:"id"`
	Answer  string   `json:"answer"`
	Options []string `json:"options"`
}

// ParsedLyrics holds the segments of a lyrics text and its words in creation order
type ParsedLyrics struct {
	Segments []Segment `json:"segments"`
	Words    []Word    `json:"words"`
}

// Word looks a word up by its identifier
func (p ParsedLyrics) Word(id string) (Word, bool) {
	for _, w := range p.Words {
		if w.ID == id {
			return w, true
		}
	}
	return Word{}, false
}

// Text rebuilds the lyrics with every gap replaced by its answer.
// Markers are not restored.
func (p ParsedLyrics) Text() string {
	var b strings.Builder
	for _, seg := range p.Segments {
		switch seg.Type {
		case SegmentText:
			b.WriteString(seg.Content)
		case SegmentGap:
			answer := seg.Answer()
			if w, ok := p.Word(seg.WordID); ok {
				answer = w.Answer
			}
			b.WriteString(answer)
		case SegmentNewline:
			b.WriteByte('\n')
		}
	}
	return b.String()
}
