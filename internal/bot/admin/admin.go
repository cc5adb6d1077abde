package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricsquiz/internal/bot"
	"github.com/sukalov/lyricsquiz/internal/bot/common"
	"github.com/sukalov/lyricsquiz/internal/db"
	"github.com/sukalov/lyricsquiz/internal/logger"
)

type ExportStats interface {
	GetExportCounts(ctx context.Context) (map[int64]int, error)
}

type AuthorCounter interface {
	Count(ctx context.Context) (int, error)
}

type Songbook interface {
	Songs() []db.Song
	SearchSongs(query string) []db.Song
	FindSongByID(id string) (db.Song, bool)
	FormatSongName(song db.Song) string
}

type AdminHandlers struct {
	admins  map[string]bool
	stats   ExportStats
	authors AuthorCounter
	songs   Songbook
}

func NewAdminHandlers(adminUsernames []string, stats ExportStats, authors AuthorCounter, songs Songbook) *AdminHandlers {
	admins := make(map[string]bool)
	for _, username := range adminUsernames {
		admins[strings.TrimPrefix(strings.TrimSpace(username), "@")] = true
	}

	return &AdminHandlers{
		admins:  admins,
		stats:   stats,
		authors: authors,
		songs:   songs,
	}
}

func (h *AdminHandlers) isAdmin(user *tgbotapi.User) bool {
	return user != nil && h.admins[user.UserName]
}

func (h *AdminHandlers) statsHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if !h.isAdmin(message.From) {
		return b.SendMessage(message.Chat.ID, "vous n'êtes pas admin")
	}

	ctx := context.Background()
	counts, err := h.stats.GetExportCounts(ctx)
	if err != nil {
		return logger.LogWithErr("failed to read export counts", err)
	}
	authors, err := h.authors.Count(ctx)
	if err != nil {
		return logger.LogWithErr("failed to count authors", err)
	}

	return b.SendMessage(message.Chat.ID, formatStats(counts, authors, len(h.songs.Songs())))
}

func formatStats(counts map[int64]int, authors, songs int) string {
	total := 0
	chats := make([]int64, 0, len(counts))
	for chatID, n := range counts {
		total += n
		chats = append(chats, chatID)
	}
	sort.Slice(chats, func(i, j int) bool {
		if counts[chats[i]] != counts[chats[j]] {
			return counts[chats[i]] > counts[chats[j]]
		}
		return chats[i] < chats[j]
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "auteurs: %d\nchansons: %d\njeux exportés: %d\n", authors, songs, total)
	for i, chatID := range chats {
		if i == 5 {
			break
		}
		fmt.Fprintf(&sb, "\n%d. %d: %d", i+1, chatID, counts[chatID])
	}
	return sb.String()
}

func SetupHandlers(adminBot *bot.Bot, adminUsernames []string, stats ExportStats, authors AuthorCounter, songs Songbook) {
	handlers := NewAdminHandlers(adminUsernames, stats, authors, songs)
	search := NewSearchHandler(handlers)

	commandHandlers := common.GetCommandHandlers()
	commandHandlers["stats"] = handlers.statsHandler
	commandHandlers["findsong"] = search.findSongHandler

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers["show_song"] = search.callbackHandler

	go adminBot.Start(commandHandlers, []bot.Handler{search.messageHandler}, callbackHandlers)
}
