package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sukalov/lyricsquiz/internal/bot/bottest"
	"github.com/sukalov/lyricsquiz/internal/db"
)

type fakeStats map[int64]int

func (f fakeStats) GetExportCounts(_ context.Context) (map[int64]int, error) {
	return f, nil
}

type fakeAuthors int

func (f fakeAuthors) Count(_ context.Context) (int, error) {
	return int(f), nil
}

type fakeSongbook []db.Song

func (f fakeSongbook) Songs() []db.Song { return f }

func (f fakeSongbook) SearchSongs(query string) []db.Song {
	var out []db.Song
	for _, song := range f {
		if strings.Contains(strings.ToLower(song.Title), strings.ToLower(query)) {
			out = append(out, song)
		}
	}
	return out
}

func (f fakeSongbook) FindSongByID(id string) (db.Song, bool) {
	for _, song := range f {
		if song.ID == id {
			return song, true
		}
	}
	return db.Song{}, false
}

func (f fakeSongbook) FormatSongName(song db.Song) string {
	return song.Title + " (" + song.CreatedAt.Format("02/01/2006") + ")"
}

func newTestAdmin() *AdminHandlers {
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	return NewAdminHandlers(
		[]string{"@lea"},
		fakeStats{10: 3, 20: 5, 30: 3},
		fakeAuthors(4),
		fakeSongbook{
			{ID: "a", ChatID: 10, Title: "La Bohème", Lyrics: "je vous parle*", CreatedAt: day},
			{ID: "b", ChatID: 20, Title: "Ne me quitte pas", Lyrics: "oublier*", CreatedAt: day},
		},
	)
}

func TestStats(t *testing.T) {
	h := newTestAdmin()
	rec := bottest.NewRecorder()

	if err := h.statsHandler(rec, bottest.CommandUpdate(1, "/stats")); err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := "auteurs: 4\nchansons: 2\njeux exportés: 11\n\n1. 20: 5\n2. 10: 3\n3. 30: 3"
	if got := rec.Last().Text; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStatsRequiresAdmin(t *testing.T) {
	h := newTestAdmin()
	rec := bottest.NewRecorder()

	update := bottest.CommandUpdate(1, "/stats")
	update.Message.From.UserName = "intrus"
	if err := h.statsHandler(rec, update); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got := rec.Last().Text; got != "vous n'êtes pas admin" {
		t.Fatalf("got %q", got)
	}
}

func TestFindSong(t *testing.T) {
	search := NewSearchHandler(newTestAdmin())
	rec := bottest.NewRecorder()

	if err := search.messageHandler(rec, bottest.CommandUpdate(1, "bohème")); err != nil {
		t.Fatalf("message: %v", err)
	}
	if !strings.Contains(rec.Last().Text, "/findsong") {
		t.Fatalf("search must start with /findsong, got %q", rec.Last().Text)
	}

	if err := search.findSongHandler(rec, bottest.CommandUpdate(1, "/findsong")); err != nil {
		t.Fatalf("findsong: %v", err)
	}
	if err := search.messageHandler(rec, bottest.CommandUpdate(1, "bohème")); err != nil {
		t.Fatalf("message: %v", err)
	}
	rows := rec.Last().Markup.InlineKeyboard
	if len(rows) != 1 || *rows[0][0].CallbackData != "show_song:a" || rows[0][0].Text != "La Bohème (16/10/2026)" {
		t.Fatalf("unexpected results %+v", rows)
	}

	if err := search.callbackHandler(rec, bottest.CallbackUpdate(1, 5, "show_song:a")); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if got := rec.Last().Text; !strings.Contains(got, "je vous parle*") || !strings.Contains(got, "chat: 10") {
		t.Fatalf("got %q", got)
	}
}
