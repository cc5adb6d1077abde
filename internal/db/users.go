package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// AuthorsType tracks the chats that build games with the bot
type AuthorsType struct {
	db *sql.DB
}

func NewAuthors(database *sql.DB) *AuthorsType {
	return &AuthorsType{db: database}
}

// Register records the chat of a message sender the first time it is seen
func (a *AuthorsType) Register(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.From == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	userName := sql.NullString{
		String: message.From.UserName,
		Valid:  message.From.UserName != "",
	}
	fullName := strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
	tgName := sql.NullString{
		String: fullName,
		Valid:  fullName != "",
	}

	query := `INSERT INTO authors (chat_id, username, tg_name, added_at, exports)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(chat_id) DO NOTHING`
	result, err := a.db.ExecContext(ctx, query, message.Chat.ID, userName, tgName, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert author: %w", err)
	}

	if n, _ := result.RowsAffected(); n > 0 {
		log.Printf("new author registered: ID: %d, username: %s", message.Chat.ID, userName.String)
	}
	return nil
}

// CountExport increments the number of games exported from a chat
func (a *AuthorsType) CountExport(ctx context.Context, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := a.db.ExecContext(ctx, `UPDATE authors SET exports = exports + 1 WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to count export for %d: %w", chatID, err)
	}
	return nil
}

// Count returns the number of registered authors
func (a *AuthorsType) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return n, nil
}
