package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricsquiz/internal/logger"
)

const maxDownloadSize = 50 << 20

// Messenger is the part of the bot that handlers talk to
type Messenger interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error
	SendMessageWithButtons(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error)
	EditMessageWithButtons(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error
	SendDocument(chatID int64, name string, data []byte, caption string) error
	AnswerCallback(callbackID, text string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type Handler func(b Messenger, update tgbotapi.Update) error

// Bot represents a configurable Telegram bot
type Bot struct {
	Client     *tgbotapi.BotAPI
	updateChan tgbotapi.UpdatesChannel
	stopChan   chan struct{}
	name       string
	mu         sync.Mutex
	httpClient *http.Client
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan := botClient.GetUpdatesChan(updateConfig)

	return &Bot{
		Client:     botClient,
		updateChan: updateChan,
		stopChan:   make(chan struct{}),
		name:       name,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Start begins processing updates with custom handlers. Callback handlers are
// keyed by the part of the callback data before the first colon.
func (b *Bot) Start(
	commandHandlers map[string]Handler,
	messageHandlers []Handler,
	callbackHandlers map[string]Handler,
) {
	logger.Info(fmt.Sprintf("[%s] authorized on account %s", b.name, b.Client.Self.UserName))

	for {
		select {
		case update := <-b.updateChan:
			go b.processUpdate(update, commandHandlers, messageHandlers, callbackHandlers)
		case <-b.stopChan:
			return
		}
	}
}

func (b *Bot) processUpdate(
	update tgbotapi.Update,
	commandHandlers map[string]Handler,
	messageHandlers []Handler,
	callbackHandlers map[string]Handler,
) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[%s] panic while handling update %d: %v", b.name, update.UpdateID, r))
		}
	}()

	if err := Dispatch(b, update, commandHandlers, messageHandlers, callbackHandlers); err != nil {
		logger.Error(fmt.Sprintf("[%s] handler error: %v", b.name, err))
	}
}

// Dispatch routes one update to its handler
func Dispatch(
	b Messenger,
	update tgbotapi.Update,
	commandHandlers map[string]Handler,
	messageHandlers []Handler,
	callbackHandlers map[string]Handler,
) error {
	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := commandHandlers[update.Message.Command()]; exists {
			return handler(b, update)
		}
	}

	if update.CallbackQuery != nil {
		key, _, _ := strings.Cut(update.CallbackQuery.Data, ":")
		if handler, exists := callbackHandlers[key]; exists {
			return handler(b, update)
		}
		return nil
	}

	for _, handler := range messageHandlers {
		if err := handler(b, update); err != nil {
			return err
		}
	}
	return nil
}

// Stop halts the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Client.StopReceivingUpdates()
	b.stopChan <- struct{}{}
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = disableLinks
	_, err := b.Client.Send(msg)
	return err
}

// SendMessageWithButtons sends text with an inline keyboard and returns the message id
func (b *Bot) SendMessageWithButtons(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sent, err := b.Client.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessageWithButtons replaces the text and keyboard of a sent message
func (b *Bot) EditMessageWithButtons(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	_, err := b.Client.Request(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (b *Bot) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := b.Client.Send(doc)
	return err
}

func (b *Bot) AnswerCallback(callbackID, text string) error {
	_, err := b.Client.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// DownloadFile fetches a file previously sent to the bot
func (b *Bot) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.Client.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
}
