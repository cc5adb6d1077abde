package scoring

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/sukalov/lyricsquiz/internal/lyrics"
)

// State is the mode of a quiz session. Only Check and Reveal change it.
type State string

const (
	Unanswered State = "unanswered"
	Checked    State = "checked"
	Revealed   State = "revealed"
)

// Verdict is the correctness mark shown on one control
type Verdict string

const (
	VerdictNone      Verdict = ""
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// Placeholder is the value of the non-selectable "unanswered" choice
const Placeholder = ""

var (
	ErrUnknownGap    = errors.New("unknown gap")
	ErrUnknownOption = errors.New("option not offered for gap")
	ErrPlaceholder   = errors.New("placeholder cannot be selected")
)

// Outcome is what a Check or Reveal reports back to the player
type Outcome struct {
	State    State    `json:"state"`
	Complete bool     `json:"complete"`
	Correct  int      `json:"correct"`
	Total    int      `json:"total"`
	Message  string   `json:"message"`
	Summary  *Summary `json:"summary,omitempty"`
}

// Summary is the completion summary shown once every gap is answered
type Summary struct {
	Player  string `json:"player"`
	Date    string `json:"date"`
	Correct int    `json:"correct"`
	Errors  int    `json:"errors"`
}

// Session is the answer state of one rendering of a ParsedLyrics model.
// It is a value: every transition returns a new Session and leaves the
// receiver untouched. A new model always starts a new Session.
type Session struct {
	ui       UI
	words    []lyrics.Word
	answers  map[string]string
	verdicts map[string]Verdict
	state    State
	outcome  *Outcome
}

// NewSession starts an unanswered session over words
func NewSession(words []lyrics.Word, ui UI) Session {
	return Session{
		ui:       ui,
		words:    words,
		answers:  map[string]string{},
		verdicts: map[string]Verdict{},
		state:    Unanswered,
	}
}

func (s Session) UI() UI               { return s.ui }
func (s Session) Words() []lyrics.Word { return s.words }
func (s Session) State() State         { return s.state }
func (s Session) Answer(id string) string {
	return s.answers[id]
}

func (s Session) Verdict(id string) Verdict {
	return s.verdicts[id]
}

// Outcome returns the result of the last Check or Reveal, if any
func (s Session) Outcome() (Outcome, bool) {
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Answered counts gaps holding a non-placeholder selection
func (s Session) Answered() int {
	n := 0
	for _, w := range s.words {
		if s.answers[w.ID] != Placeholder {
			n++
		}
	}
	return n
}

// Select records value for gap id. Only that gap's verdict is cleared; the
// state and the other marks stay as they were until the next Check.
func (s Session) Select(id, value string) (Session, error) {
	word, ok := s.word(id)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownGap, id)
	}
	if value == Placeholder {
		return s, ErrPlaceholder
	}
	if !offered(word, value) {
		return s, fmt.Errorf("%w %s: %q", ErrUnknownOption, id, value)
	}

	next := s.clone()
	next.answers[id] = value
	delete(next.verdicts, id)
	return next, nil
}

// Check marks every gap and scores the session. The score and the summary
// are only produced when no gap is left on the placeholder.
func (s Session) Check(player string, now time.Time) (Session, Outcome) {
	next := s.clone()
	next.state = Checked

	correct := 0
	complete := true
	for _, w := range s.words {
		value := next.answers[w.ID]
		if value == Placeholder {
			complete = false
		}
		if value == w.Answer {
			correct++
			next.verdicts[w.ID] = VerdictCorrect
		} else {
			next.verdicts[w.ID] = VerdictIncorrect
		}
	}

	out := Outcome{
		State:    Checked,
		Complete: complete,
		Correct:  correct,
		Total:    len(s.words),
	}
	if complete {
		out.Message = s.ui.ScoreText(correct, len(s.words))
		out.Summary = &Summary{
			Player:  s.ui.playerName(player),
			Date:    now.Format(s.ui.DateLayout),
			Correct: correct,
			Errors:  len(s.words) - correct,
		}
	} else {
		out.Message = s.ui.IncompleteMessage
	}

	next.outcome = &out
	return next, out
}

// Reveal forces every gap to its answer and marks all of them correct
func (s Session) Reveal() (Session, Outcome) {
	next := s.clone()
	next.state = Revealed
	for _, w := range s.words {
		next.answers[w.ID] = w.Answer
		next.verdicts[w.ID] = VerdictCorrect
	}

	out := Outcome{
		State:    Revealed,
		Complete: true,
		Correct:  len(s.words),
		Total:    len(s.words),
		Message:  s.ui.RevealedMessage,
	}
	next.outcome = &out
	return next, out
}

func (s Session) word(id string) (lyrics.Word, bool) {
	for _, w := range s.words {
		if w.ID == id {
			return w, true
		}
	}
	return lyrics.Word{}, false
}

func (s Session) clone() Session {
	next := s
	next.answers = maps.Clone(s.answers)
	next.verdicts = maps.Clone(s.verdicts)
	if next.answers == nil {
		next.answers = map[string]string{}
	}
	if next.verdicts == nil {
		next.verdicts = map[string]Verdict{}
	}
	return next
}

func offered(w lyrics.Word, value string) bool {
	for _, o := range w.Options {
		if o == value {
			return true
		}
	}
	return false
}
