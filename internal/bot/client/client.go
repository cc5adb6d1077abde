package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricsquiz/internal/artifact"
	"github.com/sukalov/lyricsquiz/internal/audio"
	"github.com/sukalov/lyricsquiz/internal/bot"
	"github.com/sukalov/lyricsquiz/internal/bot/common"
	"github.com/sukalov/lyricsquiz/internal/db"
	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
	"github.com/sukalov/lyricsquiz/internal/state"
)

const maxSongButtons = 10

type Songbook interface {
	Save(ctx context.Context, chatID int64, title, lyrics string) (db.Song, error)
	Delete(ctx context.Context, id string) error
	FindSongByID(id string) (db.Song, bool)
	SongsOf(chatID int64) []db.Song
	FormatSongName(song db.Song) string
}

type Importer interface {
	ExtractLyrics(ctx context.Context, url string) (*lyrics.LyricsResult, error)
}

type ExportCounter interface {
	IncrementExportCount(ctx context.Context, chatID int64) (int64, error)
}

type Authors interface {
	Register(ctx context.Context, message *tgbotapi.Message) error
	CountExport(ctx context.Context, chatID int64) error
}

// Deps are the collaborators of the client handlers. Everything except
// States may be nil; the matching commands then report they are unavailable.
type Deps struct {
	States   *state.StateManager
	Songbook Songbook
	Importer Importer
	Counter  ExportCounter
	Authors  Authors
	Location *time.Location
}

type ClientHandlers struct {
	states   *state.StateManager
	songbook Songbook
	importer Importer
	counter  ExportCounter
	authors  Authors
	loc      *time.Location
	now      func() time.Time
}

func NewClientHandlers(deps Deps) *ClientHandlers {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ClientHandlers{
		states:   deps.States,
		songbook: deps.Songbook,
		importer: deps.Importer,
		counter:  deps.Counter,
		authors:  deps.Authors,
		loc:      loc,
		now:      time.Now,
	}
}

func (h *ClientHandlers) startHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if h.authors != nil {
		if err := h.authors.Register(context.Background(), message); err != nil {
			logger.Error(fmt.Sprintf("error registering author: %v", err))
		}
	}
	return b.SendMessage(message.Chat.ID, common.HelpText)
}

func (h *ClientHandlers) titleHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	title := strings.TrimSpace(message.CommandArguments())
	if title == "" {
		return b.SendMessage(message.Chat.ID, "écrivez le titre après la commande: /title Ne me quitte pas")
	}

	d, err := h.states.SetTitle(context.Background(), message.Chat.ID, title)
	if err != nil {
		return logger.LogWithErr("failed to set title", err)
	}
	if d.Lyrics == "" {
		return b.SendMessage(message.Chat.ID, fmt.Sprintf("titre enregistré: %s\n\nenvoyez maintenant les paroles", d.Title))
	}
	return h.refreshPreview(b, message.Chat.ID, d, 0)
}

// clearHandler forgets the draft of the chat: text, title, audio and answers
func (h *ClientHandlers) clearHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if err := h.states.Clear(context.Background(), message.Chat.ID); err != nil {
		return logger.LogWithErr("failed to clear draft", err)
	}
	return b.SendMessage(message.Chat.ID, "brouillon effacé. envoyez de nouvelles paroles")
}

// lyricsHandler turns a plain text message into a new game and a fresh preview
func (h *ClientHandlers) lyricsHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	d, err := h.states.SetLyrics(context.Background(), message.Chat.ID, message.Text)
	if err != nil {
		return logger.LogWithErr("failed to store lyrics", err)
	}

	if len(d.Model.Words) == 0 {
		if err := b.SendMessage(message.Chat.ID, "aucun mot caché. terminez les mots à cacher par une étoile: mourir*"); err != nil {
			return err
		}
	}
	return h.sendPreview(b, message.Chat.ID, d, 0)
}

func (h *ClientHandlers) audioHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	fileID, name, ok := audioFile(message)
	if !ok {
		return b.SendMessage(message.Chat.ID, "ce fichier n'est pas un fichier audio")
	}

	if _, err := h.states.SetAudio(context.Background(), message.Chat.ID, fileID, name); err != nil {
		return logger.LogWithErr("failed to store audio", err)
	}
	return b.SendMessage(message.Chat.ID, fmt.Sprintf("audio ajouté: %s\n\n/export pour récupérer le jeu", name))
}

func (h *ClientHandlers) importHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if h.importer == nil {
		return b.SendMessage(message.Chat.ID, "l'import n'est pas disponible")
	}

	url := strings.TrimSpace(message.CommandArguments())
	if url == "" {
		return b.SendMessage(message.Chat.ID, "écrivez le lien après la commande: /import https://amdm.ru/...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := h.importer.ExtractLyrics(ctx, url)
	if errors.Is(err, lyrics.ErrUnsupportedSource) {
		return b.SendMessage(message.Chat.ID, "ce site n'est pas supporté")
	}
	if err != nil {
		logger.Error(fmt.Sprintf("failed to import %s: %v", url, err))
		return b.SendMessage(message.Chat.ID, "impossible de récupérer les paroles")
	}

	if result.Title != "" {
		if _, err := h.states.SetTitle(ctx, message.Chat.ID, result.Title); err != nil {
			return logger.LogWithErr("failed to set title", err)
		}
	}

	if err := b.SendMessage(message.Chat.ID, "voici les paroles. ajoutez une étoile après les mots à cacher et renvoyez le texte:"); err != nil {
		return err
	}
	return b.SendMessage(message.Chat.ID, result.Text)
}

func (h *ClientHandlers) exportHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	d, err := h.states.Get(ctx, message.Chat.ID)
	if err != nil {
		return logger.LogWithErr("failed to load draft", err)
	}
	if d.Lyrics == "" {
		return b.SendMessage(message.Chat.ID, "envoyez d'abord les paroles")
	}

	var src *audio.Source
	if d.AudioFileID != "" {
		data, err := b.DownloadFile(ctx, d.AudioFileID)
		if err != nil {
			logger.Error(fmt.Sprintf("failed to download audio for %d: %v", message.Chat.ID, err))
			return b.SendMessage(message.Chat.ID, "impossible de récupérer l'audio")
		}
		src, err = audio.FromReader(bytes.NewReader(data), d.AudioName)
		if errors.Is(err, audio.ErrTooLarge) {
			return b.SendMessage(message.Chat.ID, "le fichier audio est trop lourd")
		}
		if err != nil {
			return logger.LogWithErr("failed to read audio", err)
		}
	}

	title := d.Title
	if title == "" && src != nil {
		title = src.Title
	}

	doc := artifact.GenerateWithUI(title, d.Model, src, h.states.UI())
	caption := h.states.UI().WordsToFindText(len(d.Model.Words))
	if err := b.SendDocument(message.Chat.ID, artifact.FileName(title), []byte(doc), caption); err != nil {
		return err
	}

	if h.counter != nil {
		if n, err := h.counter.IncrementExportCount(ctx, message.Chat.ID); err != nil {
			logger.Error(fmt.Sprintf("failed to count export: %v", err))
		} else {
			logger.Debug(fmt.Sprintf("chat %d exported game #%d", message.Chat.ID, n))
		}
	}
	if h.authors != nil {
		if err := h.authors.CountExport(ctx, message.Chat.ID); err != nil {
			logger.Error(err.Error())
		}
	}
	return nil
}

func (h *ClientHandlers) saveHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if h.songbook == nil {
		return b.SendMessage(message.Chat.ID, "le carnet n'est pas disponible")
	}

	ctx := context.Background()
	d, err := h.states.Get(ctx, message.Chat.ID)
	if err != nil {
		return logger.LogWithErr("failed to load draft", err)
	}
	if d.Lyrics == "" {
		return b.SendMessage(message.Chat.ID, "rien à enregistrer")
	}

	song, err := h.songbook.Save(ctx, message.Chat.ID, d.Title, d.Lyrics)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to save song: %v", err))
		return b.SendMessage(message.Chat.ID, "erreur lors de l'enregistrement")
	}
	return b.SendMessage(message.Chat.ID, fmt.Sprintf("enregistré: %s\nid: %s", h.songbook.FormatSongName(song), song.ID))
}

func (h *ClientHandlers) songsHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if h.songbook == nil {
		return b.SendMessage(message.Chat.ID, "le carnet n'est pas disponible")
	}

	songs := h.songbook.SongsOf(message.Chat.ID)
	if len(songs) == 0 {
		return b.SendMessage(message.Chat.ID, "aucune chanson enregistrée. /save pour garder le brouillon actuel")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, song := range songs {
		if len(rows) >= maxSongButtons {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.songbook.FormatSongName(song), "load:"+song.ID),
		))
	}

	text := "vos chansons:"
	if len(songs) > maxSongButtons {
		text += fmt.Sprintf("\n(les %d plus récentes sur %d)", maxSongButtons, len(songs))
	}
	_, err := b.SendMessageWithButtons(message.Chat.ID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
	return err
}

func (h *ClientHandlers) loadHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	return h.load(b, message.Chat.ID, strings.TrimSpace(message.CommandArguments()))
}

func (h *ClientHandlers) loadCallbackHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	if err := b.AnswerCallback(query.ID, ""); err != nil {
		logger.Error(err.Error())
	}
	return h.load(b, query.Message.Chat.ID, strings.TrimPrefix(query.Data, "load:"))
}

func (h *ClientHandlers) load(b bot.Messenger, chatID int64, id string) error {
	if h.songbook == nil {
		return b.SendMessage(chatID, "le carnet n'est pas disponible")
	}

	song, found := h.songbook.FindSongByID(id)
	if !found || song.ChatID != chatID {
		return b.SendMessage(chatID, "chanson introuvable")
	}

	ctx := context.Background()
	if _, err := h.states.SetTitle(ctx, chatID, song.Title); err != nil {
		return logger.LogWithErr("failed to set title", err)
	}
	d, err := h.states.SetLyrics(ctx, chatID, song.Lyrics)
	if err != nil {
		return logger.LogWithErr("failed to load song", err)
	}
	return h.sendPreview(b, chatID, d, 0)
}

func (h *ClientHandlers) deleteHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if h.songbook == nil {
		return b.SendMessage(message.Chat.ID, "le carnet n'est pas disponible")
	}

	id := strings.TrimSpace(message.CommandArguments())
	song, found := h.songbook.FindSongByID(id)
	if !found || song.ChatID != message.Chat.ID {
		return b.SendMessage(message.Chat.ID, "chanson introuvable")
	}

	if err := h.songbook.Delete(context.Background(), id); err != nil {
		logger.Error(fmt.Sprintf("failed to delete song %s: %v", id, err))
		return b.SendMessage(message.Chat.ID, "erreur lors de la suppression")
	}
	return b.SendMessage(message.Chat.ID, "supprimé: "+h.songbook.FormatSongName(song))
}

func (h *ClientHandlers) pickHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID

	id, n, valid := parsePick(query.Data)
	if !valid {
		return b.AnswerCallback(query.ID, "choix inconnu")
	}

	d, err := h.states.Select(context.Background(), chatID, query.Message.MessageID, id, n)
	if err != nil {
		return h.rejected(b, query, "failed to select option", err)
	}

	if err := b.AnswerCallback(query.ID, ""); err != nil {
		logger.Error(err.Error())
	}
	return h.refreshPreview(b, chatID, d, PageOf(d.Model.Words, id))
}

func (h *ClientHandlers) checkHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID

	d, out, err := h.states.Check(context.Background(), chatID, query.Message.MessageID, query.From.FirstName, h.now().In(h.loc))
	if err != nil {
		return h.rejected(b, query, "failed to check answers", err)
	}

	if err := b.AnswerCallback(query.ID, out.Message); err != nil {
		logger.Error(err.Error())
	}
	if err := h.refreshPreview(b, chatID, d, 0); err != nil {
		return err
	}
	if out.Summary != nil {
		return b.SendMessage(chatID, h.states.UI().SummaryText(*out.Summary))
	}
	return nil
}

func (h *ClientHandlers) revealHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID

	d, out, err := h.states.Reveal(context.Background(), chatID, query.Message.MessageID)
	if err != nil {
		return h.rejected(b, query, "failed to reveal answers", err)
	}
	if err := b.AnswerCallback(query.ID, out.Message); err != nil {
		logger.Error(err.Error())
	}
	return h.refreshPreview(b, chatID, d, 0)
}

func (h *ClientHandlers) resetHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID

	d, err := h.states.Reset(context.Background(), chatID, query.Message.MessageID)
	if err != nil {
		return h.rejected(b, query, "failed to reset answers", err)
	}
	if err := b.AnswerCallback(query.ID, ""); err != nil {
		logger.Error(err.Error())
	}
	return h.refreshPreview(b, chatID, d, 0)
}

// rejected answers a button whose effect the state manager refused. Buttons
// of an older preview are ignored so that no answer carries over to a newly
// parsed text.
func (h *ClientHandlers) rejected(b bot.Messenger, query *tgbotapi.CallbackQuery, msg string, err error) error {
	switch {
	case errors.Is(err, state.ErrStalePreview), errors.Is(err, state.ErrNoLyrics):
		return b.AnswerCallback(query.ID, "cet aperçu n'est plus actif")
	case errors.Is(err, scoring.ErrUnknownGap), errors.Is(err, scoring.ErrUnknownOption):
		return b.AnswerCallback(query.ID, "choix inconnu")
	}
	return logger.LogWithErr(msg, err)
}

func (h *ClientHandlers) pageHandler(b bot.Messenger, update tgbotapi.Update) error {
	query := update.CallbackQuery
	d, ok, err := h.current(b, query)
	if err != nil || !ok {
		return err
	}

	page, err := strconv.Atoi(strings.TrimPrefix(query.Data, "page:"))
	if err != nil {
		return b.AnswerCallback(query.ID, "")
	}
	if err := b.AnswerCallback(query.ID, ""); err != nil {
		logger.Error(err.Error())
	}
	return h.refreshPreview(b, query.Message.Chat.ID, d, page)
}

// current returns the draft behind a read-only preview button
func (h *ClientHandlers) current(b bot.Messenger, query *tgbotapi.CallbackQuery) (state.Draft, bool, error) {
	d, err := h.states.Get(context.Background(), query.Message.Chat.ID)
	if err != nil {
		return d, false, logger.LogWithErr("failed to load draft", err)
	}
	if d.Lyrics == "" || d.MessageID != query.Message.MessageID {
		return d, false, b.AnswerCallback(query.ID, "cet aperçu n'est plus actif")
	}
	return d, true, nil
}

func (h *ClientHandlers) sendPreview(b bot.Messenger, chatID int64, d state.Draft, page int) error {
	p := RenderPreview(d, h.states.Session(d), page)
	messageID, err := b.SendMessageWithButtons(chatID, p.Text, p.Keyboard)
	if err != nil {
		return err
	}
	_, err = h.states.SetMessageID(context.Background(), chatID, messageID)
	return err
}

func (h *ClientHandlers) refreshPreview(b bot.Messenger, chatID int64, d state.Draft, page int) error {
	if d.MessageID == 0 {
		return h.sendPreview(b, chatID, d, page)
	}
	p := RenderPreview(d, h.states.Session(d), page)
	return b.EditMessageWithButtons(chatID, d.MessageID, p.Text, p.Keyboard)
}

func audioFile(message *tgbotapi.Message) (fileID, name string, ok bool) {
	switch {
	case message.Audio != nil:
		name = message.Audio.FileName
		if name == "" {
			name = message.Audio.Title
		}
		return message.Audio.FileID, name, true
	case message.Document != nil && strings.HasPrefix(message.Document.MimeType, "audio/"):
		return message.Document.FileID, message.Document.FileName, true
	}
	return "", "", false
}

func (h *ClientHandlers) messageHandler(b bot.Messenger, update tgbotapi.Update) error {
	message := update.Message
	if message == nil {
		return nil
	}

	switch {
	case message.Audio != nil || message.Document != nil:
		return h.audioHandler(b, update)
	case message.IsCommand():
		return b.SendMessage(message.Chat.ID, "commande inconnue. /help")
	case strings.TrimSpace(message.Text) != "":
		return h.lyricsHandler(b, update)
	}
	return b.SendMessage(message.Chat.ID, common.HelpText)
}

func SetupHandlers(clientBot *bot.Bot, deps Deps) {
	handlers := NewClientHandlers(deps)

	commandHandlers := common.GetCommandHandlers()
	commandHandlers["start"] = handlers.startHandler
	commandHandlers["title"] = handlers.titleHandler
	commandHandlers["import"] = handlers.importHandler
	commandHandlers["export"] = handlers.exportHandler
	commandHandlers["save"] = handlers.saveHandler
	commandHandlers["songs"] = handlers.songsHandler
	commandHandlers["load"] = handlers.loadHandler
	commandHandlers["delete"] = handlers.deleteHandler
	commandHandlers["clear"] = handlers.clearHandler

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers["pick"] = handlers.pickHandler
	callbackHandlers["check"] = handlers.checkHandler
	callbackHandlers["reveal"] = handlers.revealHandler
	callbackHandlers["reset"] = handlers.resetHandler
	callbackHandlers["page"] = handlers.pageHandler
	callbackHandlers["load"] = handlers.loadCallbackHandler

	go clientBot.Start(
		commandHandlers,
		[]bot.Handler{handlers.messageHandler},
		callbackHandlers,
	)
}
