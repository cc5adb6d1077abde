package admin

import (
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricsquiz/internal/bot"
)

const maxResults = 10

type SearchHandler struct {
	*AdminHandlers
	mu             sync.Mutex
	awaitingSearch map[int64]bool
}

func NewSearchHandler(admin *AdminHandlers) *SearchHandler {
	return &SearchHandler{
		AdminHandlers:  admin,
		awaitingSearch: make(map[int64]bool),
	}
}

func (h *SearchHandler) findSongHandler(b bot.Messenger, update tgbotapi.Update) error {
	if !h.isAdmin(update.Message.From) {
		return b.SendMessage(update.Message.Chat.ID, "vous n'êtes pas admin")
	}

	h.mu.Lock()
	h.awaitingSearch[update.Message.Chat.ID] = true
	h.mu.Unlock()
	return b.SendMessage(update.Message.Chat.ID, "écrivez un titre ou quelques mots des paroles")
}

func (h *SearchHandler) messageHandler(b bot.Messenger, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}

	h.mu.Lock()
	awaiting := h.awaitingSearch[update.Message.Chat.ID]
	delete(h.awaitingSearch, update.Message.Chat.ID)
	h.mu.Unlock()

	if !awaiting {
		return b.SendMessage(update.Message.Chat.ID, "rien compris. pour chercher une chanson, commencez par /findsong")
	}

	results := h.songs.SearchSongs(update.Message.Text)
	if len(results) == 0 {
		return b.SendMessage(update.Message.Chat.ID, "aucun résultat")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, song := range results {
		if len(rows) >= maxResults {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.songs.FormatSongName(song), "show_song:"+song.ID),
		))
	}

	message := "chansons trouvées:"
	if len(results) > maxResults {
		message += fmt.Sprintf("\n(les %d premières sur %d)", maxResults, len(results))
	}

	_, err := b.SendMessageWithButtons(update.Message.Chat.ID, message, tgbotapi.NewInlineKeyboardMarkup(rows...))
	return err
}

func (h *SearchHandler) callbackHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	if err := b.AnswerCallback(query.ID, ""); err != nil {
		return err
	}
	if !h.isAdmin(query.From) {
		return nil
	}

	songID := strings.TrimPrefix(query.Data, "show_song:")
	song, found := h.songs.FindSongByID(songID)
	if !found {
		return b.SendMessage(query.Message.Chat.ID, "chanson introuvable")
	}

	return b.SendMessage(query.Message.Chat.ID,
		fmt.Sprintf("%s\nid: %s · chat: %d\n\n%s", h.songs.FormatSongName(song), song.ID, song.ChatID, song.Lyrics))
}
