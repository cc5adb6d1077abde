package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
)

var (
	ErrNoLyrics = errors.New("no lyrics in draft")
	// ErrStalePreview is returned for a preview message that no longer shows the current model
	ErrStalePreview = errors.New("preview is not the current one")
)

// Draft is what an author is working on in one chat
type Draft struct {
	Title       string              `json:"title"`
	Lyrics      string              `json:"lyrics"`
	Model       lyrics.ParsedLyrics `json:"model"`
	Session     scoring.Snapshot    `json:"session"`
	AudioFileID string              `json:"audioFileId,omitempty"`
	AudioName   string              `json:"audioName,omitempty"`
	// MessageID is the preview message kept up to date with the session
	MessageID int       `json:"messageId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists drafts as opaque blobs; a missing draft is a nil blob
type Store interface {
	GetDraft(ctx context.Context, chatID int64) ([]byte, error)
	SetDraft(ctx context.Context, chatID int64, data []byte) error
	DeleteDraft(ctx context.Context, chatID int64) error
}

type StateManager struct {
	mu     sync.RWMutex
	store  Store
	ui     scoring.UI
	drafts map[int64]Draft
	now    func() time.Time
}

func NewStateManager(store Store, ui scoring.UI) *StateManager {
	return &StateManager{
		store:  store,
		ui:     ui,
		drafts: make(map[int64]Draft),
		now:    time.Now,
	}
}

func (sm *StateManager) UI() scoring.UI {
	return sm.ui
}

// Get returns the draft of a chat, loading it from the store on first use
func (sm *StateManager) Get(ctx context.Context, chatID int64) (Draft, error) {
	sm.mu.RLock()
	d, ok := sm.drafts[chatID]
	sm.mu.RUnlock()
	if ok {
		return d, nil
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.load(ctx, chatID)
}

// Session rebuilds the live session of a draft
func (sm *StateManager) Session(d Draft) scoring.Session {
	return scoring.Restore(d.Model.Words, sm.ui, d.Session)
}

// SetLyrics parses text into a fresh model. The previous session is dropped.
func (sm *StateManager) SetLyrics(ctx context.Context, chatID int64, text string) (Draft, error) {
	return sm.update(ctx, chatID, func(d *Draft) error {
		d.Lyrics = text
		d.Model = lyrics.Parse(text)
		d.Session = scoring.NewSession(d.Model.Words, sm.ui).Snapshot()
		d.MessageID = 0
		return nil
	})
}

func (sm *StateManager) SetTitle(ctx context.Context, chatID int64, title string) (Draft, error) {
	return sm.update(ctx, chatID, func(d *Draft) error {
		d.Title = strings.TrimSpace(title)
		return nil
	})
}

func (sm *StateManager) SetAudio(ctx context.Context, chatID int64, fileID, name string) (Draft, error) {
	return sm.update(ctx, chatID, func(d *Draft) error {
		d.AudioFileID = fileID
		d.AudioName = name
		return nil
	})
}

func (sm *StateManager) SetMessageID(ctx context.Context, chatID int64, messageID int) (Draft, error) {
	return sm.update(ctx, chatID, func(d *Draft) error {
		d.MessageID = messageID
		return nil
	})
}

// Select records option n of a gap, pressed on preview messageID
func (sm *StateManager) Select(ctx context.Context, chatID int64, messageID int, gapID string, option int) (Draft, error) {
	return sm.update(ctx, chatID, func(d *Draft) error {
		if err := current(d, messageID); err != nil {
			return err
		}
		w, ok := d.Model.Word(gapID)
		if !ok {
			return fmt.Errorf("%w: %s", scoring.ErrUnknownGap, gapID)
		}
		if option < 0 || option >= len(w.Options) {
			return fmt.Errorf("%w %s: #%d", scoring.ErrUnknownOption, gapID, option)
		}
		next, err := sm.Session(*d).Select(gapID, w.Options[option])
		if err != nil {
			return err
		}
		d.Session = next.Snapshot()
		return nil
	})
}

func (sm *StateManager) Check(ctx context.Context, chatID int64, messageID int, player string, now time.Time) (Draft, scoring.Outcome, error) {
	var out scoring.Outcome
	d, err := sm.update(ctx, chatID, func(d *Draft) error {
		if err := current(d, messageID); err != nil {
			return err
		}
		var next scoring.Session
		next, out = sm.Session(*d).Check(player, now)
		d.Session = next.Snapshot()
		return nil
	})
	return d, out, err
}

func (sm *StateManager) Reveal(ctx context.Context, chatID int64, messageID int) (Draft, scoring.Outcome, error) {
	var out scoring.Outcome
	d, err := sm.update(ctx, chatID, func(d *Draft) error {
		if err := current(d, messageID); err != nil {
			return err
		}
		var next scoring.Session
		next, out = sm.Session(*d).Reveal()
		d.Session = next.Snapshot()
		return nil
	})
	return d, out, err
}

// Reset clears the answers of the live session, keeping the model
func (sm *StateManager) Reset(ctx context.Context, chatID int64, messageID int) (Draft, error) {
	return sm.update(ctx, chatID, func(d *Draft) error {
		if err := current(d, messageID); err != nil {
			return err
		}
		d.Session = scoring.NewSession(d.Model.Words, sm.ui).Snapshot()
		return nil
	})
}

// current is checked under sm.mu so that a new text parsed between a button
// press and its effect can never receive the old answer
func current(d *Draft, messageID int) error {
	if d.Lyrics == "" {
		return ErrNoLyrics
	}
	if d.MessageID == 0 || d.MessageID != messageID {
		return ErrStalePreview
	}
	return nil
}

func (sm *StateManager) Clear(ctx context.Context, chatID int64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.drafts, chatID)
	if err := sm.store.DeleteDraft(ctx, chatID); err != nil {
		return fmt.Errorf("error happened while clearing draft: %w", err)
	}
	return nil
}

func (sm *StateManager) update(ctx context.Context, chatID int64, fn func(*Draft) error) (Draft, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	d, err := sm.load(ctx, chatID)
	if err != nil {
		return Draft{}, err
	}
	if err := fn(&d); err != nil {
		return d, err
	}
	d.UpdatedAt = sm.now()

	data, err := json.Marshal(d)
	if err != nil {
		return d, fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := sm.store.SetDraft(ctx, chatID, data); err != nil {
		return d, fmt.Errorf("error happened while saving draft: %w", err)
	}
	sm.drafts[chatID] = d
	return d, nil
}

// load expects sm.mu to be held for writing
func (sm *StateManager) load(ctx context.Context, chatID int64) (Draft, error) {
	if d, ok := sm.drafts[chatID]; ok {
		return d, nil
	}

	data, err := sm.store.GetDraft(ctx, chatID)
	if err != nil {
		return Draft{}, err
	}
	d := Draft{Model: lyrics.Parse("")}
	if data != nil {
		if err := json.Unmarshal(data, &d); err != nil {
			return Draft{}, fmt.Errorf("failed to decode draft: %w", err)
		}
	}
	sm.drafts[chatID] = d
	return d, nil
}
