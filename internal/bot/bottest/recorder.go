// Package bottest provides a bot.Messenger that records what handlers send.
package bottest

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Message struct {
	ChatID    int64
	MessageID int
	Text      string
	Markup    *tgbotapi.InlineKeyboardMarkup
	Edited    bool
}

type Document struct {
	ChatID  int64
	Name    string
	Data    []byte
	Caption string
}

// Recorder implements bot.Messenger in memory. Files maps file ids to the
// bytes DownloadFile returns.
type Recorder struct {
	mu        sync.Mutex
	nextID    int
	Messages  []Message
	Documents []Document
	Answers   []string
	Files     map[string][]byte
}

func NewRecorder() *Recorder {
	return &Recorder{nextID: 100, Files: make(map[string][]byte)}
}

func (r *Recorder) SendMessage(chatID int64, text string) error {
	_, err := r.send(chatID, text, nil)
	return err
}

func (r *Recorder) SendMessageWithMarkdown(chatID int64, text string, _ bool) error {
	_, err := r.send(chatID, text, nil)
	return err
}

func (r *Recorder) SendMessageWithButtons(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) (int, error) {
	return r.send(chatID, text, &markup)
}

func (r *Recorder) EditMessageWithButtons(chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, Message{ChatID: chatID, MessageID: messageID, Text: text, Markup: &markup, Edited: true})
	return nil
}

func (r *Recorder) SendDocument(chatID int64, name string, data []byte, caption string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Documents = append(r.Documents, Document{ChatID: chatID, Name: name, Data: data, Caption: caption})
	return nil
}

func (r *Recorder) AnswerCallback(_ string, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Answers = append(r.Answers, text)
	return nil
}

func (r *Recorder) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.Files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s not found", fileID)
	}
	return data, nil
}

// Last returns the most recent message sent or edited
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

func (r *Recorder) send(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.Messages = append(r.Messages, Message{ChatID: chatID, MessageID: r.nextID, Text: text, Markup: markup})
	return r.nextID, nil
}

// CommandUpdate builds an update carrying text from a user in chatID
func CommandUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chatID, FirstName: "Léa", UserName: "lea"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, c := range text {
			if c == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{Message: msg}
}

// CallbackUpdate builds a button press on messageID in chatID
func CallbackUpdate(chatID int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: chatID, FirstName: "Léa", UserName: "lea"},
		Message: &tgbotapi.Message{
			MessageID: messageID,
			Chat:      &tgbotapi.Chat{ID: chatID},
		},
		Data: data,
	}}
}
