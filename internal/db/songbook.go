package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSongNotFound = errors.New("song not found")

// Song is a saved lyrics draft, markers included
type Song struct {
	ID        string    `json:"id"`
	ChatID    int64     `json:"chatId"`
	Title     string    `json:"title"`
	Lyrics    string    `json:"lyrics"`
	CreatedAt time.Time `json:"createdAt"`
}

type SongbookType struct {
	db    *sql.DB
	songs []Song
	mu    sync.RWMutex
}

func NewSongbook(database *sql.DB) *SongbookType {
	return &SongbookType{db: database}
}

// Init loads every saved song into memory
func (s *SongbookType) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT id, chat_id, title, lyrics, created_at FROM songbook ORDER BY created_at")
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var song Song
		var createdAt string
		if err := rows.Scan(&song.ID, &song.ChatID, &song.Title, &song.Lyrics, &createdAt); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		song.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error during rows iteration: %w", err)
	}

	s.songs = songs
	return nil
}

// Save stores a new song and returns it with its generated id
func (s *SongbookType) Save(ctx context.Context, chatID int64, title, lyrics string) (Song, error) {
	song := Song{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Title:     strings.TrimSpace(title),
		Lyrics:    lyrics,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `INSERT INTO songbook (id, chat_id, title, lyrics, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, song.ID, song.ChatID, song.Title, song.Lyrics, song.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return Song{}, fmt.Errorf("failed to insert song: %w", err)
	}

	s.mu.Lock()
	s.songs = append(s.songs, song)
	s.mu.Unlock()

	return song, nil
}

func (s *SongbookType) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM songbook WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSongNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs = removeSong(s.songs, id)
	return nil
}

func (s *SongbookType) FindSongByID(id string) (Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, song := range s.songs {
		if song.ID == id {
			return song, true
		}
	}
	return Song{}, false
}

// Songs returns all songs, newest first
func (s *SongbookType) Songs() []Song {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]Song(nil), s.songs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// SongsOf returns the songs saved from one chat, newest first
func (s *SongbookType) SongsOf(chatID int64) []Song {
	var out []Song
	for _, song := range s.Songs() {
		if song.ChatID == chatID {
			out = append(out, song)
		}
	}
	return out
}

// SearchSongs matches query case-insensitively against titles and lyrics
func (s *SongbookType) SearchSongs(query string) []Song {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var out []Song
	for _, song := range s.Songs() {
		if strings.Contains(strings.ToLower(song.Title), query) ||
			strings.Contains(strings.ToLower(song.Lyrics), query) {
			out = append(out, song)
		}
	}
	return out
}

func (s *SongbookType) FormatSongName(song Song) string {
	title := strings.TrimSpace(song.Title)
	if title == "" {
		title = "sans titre"
	}
	return fmt.Sprintf("%s (%s)", title, song.CreatedAt.Format("02/01/2006"))
}

func removeSong(songs []Song, id string) []Song {
	out := songs[:0]
	for _, song := range songs {
		if song.ID != id {
			out = append(out, song)
		}
	}
	return out
}
