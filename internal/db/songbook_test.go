package db

import (
	"testing"
	"time"
)

func TestDSN(t *testing.T) {
	got, err := DSN("libsql://songs-example.turso.io", "tok en")
	if err != nil {
		t.Fatalf("dsn: %v", err)
	}
	if got != "libsql://songs-example.turso.io?authToken=tok+en" {
		t.Fatalf("got %s", got)
	}

	if _, err := DSN("not a url", ""); err == nil {
		t.Fatalf("expect error for url without scheme")
	}
}

func TestSongbookLookup(t *testing.T) {
	day := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := &SongbookType{songs: []Song{
		{ID: "a", ChatID: 1, Title: "Vieux", CreatedAt: day.Add(-time.Hour)},
		{ID: "b", ChatID: 2, Title: "Autre", CreatedAt: day},
		{ID: "c", ChatID: 1, Title: "Neuf", CreatedAt: day.Add(time.Hour)},
	}}

	if song, ok := s.FindSongByID("b"); !ok || song.Title != "Autre" {
		t.Fatalf("lookup failed: %+v %v", song, ok)
	}
	if _, ok := s.FindSongByID("zzz"); ok {
		t.Fatalf("unexpected song")
	}

	all := s.Songs()
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Fatalf("unexpected order %+v", all)
	}

	mine := s.SongsOf(1)
	if len(mine) != 2 || mine[0].ID != "c" || mine[1].ID != "a" {
		t.Fatalf("unexpected chat songs %+v", mine)
	}

	s.songs = removeSong(s.songs, "b")
	if _, ok := s.FindSongByID("b"); ok || len(s.songs) != 2 {
		t.Fatalf("song not removed")
	}
}

func TestFormatSongName(t *testing.T) {
	s := &SongbookType{}
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	if got := s.FormatSongName(Song{Title: " Mourir ", CreatedAt: day}); got != "Mourir (16/10/2026)" {
		t.Fatalf("got %q", got)
	}
	if got := s.FormatSongName(Song{CreatedAt: day}); got != "sans titre (16/10/2026)" {
		t.Fatalf("got %q", got)
	}
}

func TestSearchSongs(t *testing.T) {
	s := &SongbookType{songs: []Song{
		{ID: "a", Title: "Ne me quitte pas", Lyrics: "il faut oublier*"},
		{ID: "b", Title: "La Bohème", Lyrics: "je vous parle d'un temps"},
	}}

	cases := map[string][]string{
		"quitte":  {"a"},
		"BOHÈME":  {"b"},
		"temps":   {"b"},
		"":        nil,
		"absente": nil,
	}
	for query, want := range cases {
		got := s.SearchSongs(query)
		if len(got) != len(want) {
			t.Fatalf("%q: got %d songs, want %d", query, len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("%q: got %s, want %s", query, got[i].ID, want[i])
			}
		}
	}
}
