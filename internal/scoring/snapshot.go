package scoring

import "github.com/sukalov/lyricsquiz/internal/lyrics"

// Snapshot is the serializable form of a Session
type Snapshot struct {
	State    State              `json:"state"`
	Answers  map[string]string  `json:"answers,omitempty"`
	Verdicts map[string]Verdict `json:"verdicts,omitempty"`
	Outcome  *Outcome           `json:"outcome,omitempty"`
}

func (s Session) Snapshot() Snapshot {
	c := s.clone()
	return Snapshot{
		State:    c.state,
		Answers:  c.answers,
		Verdicts: c.verdicts,
		Outcome:  c.outcome,
	}
}

// Restore rebuilds a session for words from a snapshot. Entries for gaps or
// options that words no longer offer are dropped.
func Restore(words []lyrics.Word, ui UI, snap Snapshot) Session {
	s := NewSession(words, ui)
	switch snap.State {
	case Checked, Revealed:
		s.state = snap.State
	}
	for _, w := range words {
		if v, ok := snap.Answers[w.ID]; ok && offered(w, v) {
			s.answers[w.ID] = v
		}
		if v, ok := snap.Verdicts[w.ID]; ok && v != VerdictNone {
			s.verdicts[w.ID] = v
		}
	}
	if snap.Outcome != nil && s.state != Unanswered {
		out := *snap.Outcome
		s.outcome = &out
	}
	return s
}
