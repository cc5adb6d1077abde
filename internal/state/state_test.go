package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
)

type memStore struct {
	data map[int64][]byte
	sets int
	err  error
}

func newMemStore() *memStore {
	return &memStore{data: map[int64][]byte{}}
}

func (m *memStore) GetDraft(_ context.Context, chatID int64) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data[chatID], nil
}

func (m *memStore) SetDraft(_ context.Context, chatID int64, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.sets++
	m.data[chatID] = data
	return nil
}

func (m *memStore) DeleteDraft(_ context.Context, chatID int64) error {
	delete(m.data, chatID)
	return nil
}

func TestEmptyDraft(t *testing.T) {
	sm := NewStateManager(newMemStore(), scoring.DefaultUI())
	d, err := sm.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Lyrics != "" || len(d.Model.Words) != 0 || d.Model.Segments == nil {
		t.Fatalf("unexpected empty draft %+v", d)
	}
	if _, _, err := sm.Check(context.Background(), 1, 0, "", time.Now()); !errors.Is(err, ErrNoLyrics) {
		t.Fatalf("expect ErrNoLyrics, got %v", err)
	}
}

func TestNewLyricsResetSession(t *testing.T) {
	ctx := context.Background()
	sm := NewStateManager(newMemStore(), scoring.DefaultUI())

	d, err := sm.SetLyrics(ctx, 1, "a* b*")
	if err != nil {
		t.Fatalf("set lyrics: %v", err)
	}
	if _, err := sm.SetMessageID(ctx, 1, 42); err != nil {
		t.Fatalf("set message: %v", err)
	}
	w := d.Model.Words[0]
	if _, err := sm.Select(ctx, 1, 42, w.ID, answerIndex(w)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, _, err := sm.Check(ctx, 1, 42, "", time.Now()); err != nil {
		t.Fatalf("check: %v", err)
	}

	d, err = sm.SetLyrics(ctx, 1, "c* d* e*")
	if err != nil {
		t.Fatalf("set lyrics: %v", err)
	}
	s := sm.Session(d)
	if s.State() != scoring.Unanswered || s.Answered() != 0 || len(s.Words()) != 3 {
		t.Fatalf("session carried over: state %s answered %d", s.State(), s.Answered())
	}
	if d.MessageID != 0 {
		t.Fatalf("preview message should be replaced")
	}
}

func TestCheckAndPersist(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sm := NewStateManager(store, scoring.DefaultUI())

	d, _ := sm.SetLyrics(ctx, 7, "a* b*")
	d, _ = sm.SetTitle(ctx, 7, "  Deux  ")
	d, _ = sm.SetMessageID(ctx, 7, 5)
	for _, w := range d.Model.Words {
		if _, err := sm.Select(ctx, 7, 5, w.ID, answerIndex(w)); err != nil {
			t.Fatalf("select %s: %v", w.ID, err)
		}
	}
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	_, out, err := sm.Check(ctx, 7, 5, "Lina", now)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !out.Complete || out.Correct != 2 || out.Summary.Player != "Lina" {
		t.Fatalf("unexpected outcome %+v", out)
	}

	// a fresh manager reads the same draft back from the store
	other := NewStateManager(store, scoring.DefaultUI())
	got, err := other.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Deux" || got.Lyrics != "a* b*" {
		t.Fatalf("unexpected draft %+v", got)
	}
	s := other.Session(got)
	if s.State() != scoring.Checked || s.Verdict(got.Model.Words[0].ID) != scoring.VerdictCorrect {
		t.Fatalf("session not restored: %s", s.State())
	}
	if got.Model.Text() != "a b" {
		t.Fatalf("model text %q", got.Model.Text())
	}
}

func TestSelectErrors(t *testing.T) {
	ctx := context.Background()
	sm := NewStateManager(newMemStore(), scoring.DefaultUI())

	if _, err := sm.Select(ctx, 1, 0, "mot1", 0); !errors.Is(err, ErrNoLyrics) {
		t.Fatalf("expect ErrNoLyrics, got %v", err)
	}
	sm.SetLyrics(ctx, 1, "a* b*")
	sm.SetMessageID(ctx, 1, 9)
	if _, err := sm.Select(ctx, 1, 9, "mot1", 5); !errors.Is(err, scoring.ErrUnknownOption) {
		t.Fatalf("expect ErrUnknownOption, got %v", err)
	}
	if _, err := sm.Select(ctx, 1, 9, "mot1", -1); !errors.Is(err, scoring.ErrUnknownOption) {
		t.Fatalf("expect ErrUnknownOption, got %v", err)
	}
	if _, err := sm.Select(ctx, 1, 9, "mot9", 0); !errors.Is(err, scoring.ErrUnknownGap) {
		t.Fatalf("expect ErrUnknownGap, got %v", err)
	}
	if _, err := sm.Select(ctx, 1, 8, "mot1", 0); !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expect ErrStalePreview, got %v", err)
	}
}

// TestNewTextBetweenPressAndSelect parses a new text after a button of the
// old preview was pressed; the press must not reach the new session
func TestNewTextBetweenPressAndSelect(t *testing.T) {
	ctx := context.Background()
	sm := NewStateManager(newMemStore(), scoring.DefaultUI())

	d, _ := sm.SetLyrics(ctx, 1, "a* b*")
	d, _ = sm.SetMessageID(ctx, 1, 10)
	pressed := d.MessageID
	w := d.Model.Words[0]

	// same text, same option sets: only the preview id tells them apart
	if _, err := sm.SetLyrics(ctx, 1, "a* b*"); err != nil {
		t.Fatalf("set lyrics: %v", err)
	}

	if _, err := sm.Select(ctx, 1, pressed, w.ID, answerIndex(w)); !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expect ErrStalePreview, got %v", err)
	}
	if _, _, err := sm.Check(ctx, 1, pressed, "", time.Now()); !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expect ErrStalePreview, got %v", err)
	}
	if _, _, err := sm.Reveal(ctx, 1, pressed); !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expect ErrStalePreview, got %v", err)
	}
	if _, err := sm.Reset(ctx, 1, pressed); !errors.Is(err, ErrStalePreview) {
		t.Fatalf("expect ErrStalePreview, got %v", err)
	}

	got, _ := sm.Get(ctx, 1)
	if s := sm.Session(got); s.Answered() != 0 || s.State() != scoring.Unanswered {
		t.Fatalf("old press reached the new session: %s, %d answered", s.State(), s.Answered())
	}
}

func TestRevealResetClear(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sm := NewStateManager(store, scoring.DefaultUI())
	sm.SetLyrics(ctx, 3, "x* y* z*")
	sm.SetMessageID(ctx, 3, 1)

	d, out, err := sm.Reveal(ctx, 3, 1)
	if err != nil || out.State != scoring.Revealed || out.Correct != 3 {
		t.Fatalf("reveal: %+v %v", out, err)
	}
	if sm.Session(d).Answered() != 3 {
		t.Fatalf("reveal should fill every gap")
	}

	d, _ = sm.Reset(ctx, 3, 1)
	if sm.Session(d).State() != scoring.Unanswered {
		t.Fatalf("reset should return to unanswered")
	}

	if err := sm.Clear(ctx, 3); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := store.data[3]; ok {
		t.Fatalf("draft still stored")
	}
}

func TestStoreErrors(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("down")
	sm := NewStateManager(store, scoring.DefaultUI())
	if _, err := sm.SetLyrics(context.Background(), 1, "a*"); !errors.Is(err, store.err) {
		t.Fatalf("expect store error, got %v", err)
	}
}

func answerIndex(w lyrics.Word) int {
	for i, option := range w.Options {
		if option == w.Answer {
			return i
		}
	}
	return -1
}
