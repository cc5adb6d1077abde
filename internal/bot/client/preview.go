package client

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
	"github.com/sukalov/lyricsquiz/internal/state"
)

const (
	gapsPerPage     = 8
	maxPreviewRunes = 3900
	untitled        = "Sans titre"
)

// Preview is one rendering of a draft as a chat message
type Preview struct {
	Text     string
	Keyboard tgbotapi.InlineKeyboardMarkup
}

// RenderPreview draws the lyrics with their gaps and a keyboard holding one
// row of choices per gap of the requested page
func RenderPreview(d state.Draft, s scoring.Session, page int) Preview {
	ui := s.UI()
	words := s.Words()

	ordinals := make(map[string]int, len(words))
	for i, w := range words {
		ordinals[w.ID] = i + 1
	}

	var b strings.Builder
	title := d.Title
	if title == "" {
		title = untitled
	}
	b.WriteString(title + "\n")
	b.WriteString(ui.WordsToFindText(len(words)) + "\n\n")

	for _, seg := range d.Model.Segments {
		switch seg.Type {
		case lyrics.SegmentText:
			b.WriteString(seg.Content)
		case lyrics.SegmentGap:
			b.WriteString(gapLabel(ordinals[seg.WordID], s, seg.WordID))
		case lyrics.SegmentNewline:
			b.WriteString("\n")
		}
	}

	if out, ok := s.Outcome(); ok {
		b.WriteString("\n\n" + out.Message)
	}

	return Preview{
		Text:     truncate(b.String(), maxPreviewRunes),
		Keyboard: keyboard(s, clampPage(page, len(words))),
	}
}

// PageOf returns the keyboard page holding gap id
func PageOf(words []lyrics.Word, id string) int {
	for i, w := range words {
		if w.ID == id {
			return i / gapsPerPage
		}
	}
	return 0
}

func gapLabel(ordinal int, s scoring.Session, id string) string {
	answer := s.Answer(id)
	if answer == scoring.Placeholder {
		answer = "____"
	}
	label := fmt.Sprintf("[%d %s]", ordinal, answer)
	switch s.Verdict(id) {
	case scoring.VerdictCorrect:
		label += "✅"
	case scoring.VerdictIncorrect:
		label += "❌"
	}
	return label
}

func keyboard(s scoring.Session, page int) tgbotapi.InlineKeyboardMarkup {
	ui := s.UI()
	words := s.Words()
	var rows [][]tgbotapi.InlineKeyboardButton

	start := page * gapsPerPage
	end := min(start+gapsPerPage, len(words))
	for i := start; i < end; i++ {
		w := words[i]
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(i+1)+".", "noop"),
		}
		for n, option := range w.Options {
			label := option
			if s.Answer(w.ID) == option {
				label = "• " + option
			}
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, pickData(w.ID, n)))
		}
		rows = append(rows, row)
	}

	if pages := pageCount(len(words)); pages > 1 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀", "page:"+strconv.Itoa((page+pages-1)%pages)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page+1, pages), "noop"),
			tgbotapi.NewInlineKeyboardButtonData("▶", "page:"+strconv.Itoa((page+1)%pages)),
		))
	}

	actions := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(ui.CheckLabel, "check"),
		tgbotapi.NewInlineKeyboardButtonData(ui.RevealLabel, "reveal"),
	)
	if s.State() != scoring.Unanswered {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("↺", "reset"))
	}
	rows = append(rows, actions)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func pickData(id string, option int) string {
	return "pick:" + id + ":" + strconv.Itoa(option)
}

// parsePick reads "pick:<id>:<n>" back
func parsePick(data string) (id string, option int, ok bool) {
	rest, found := strings.CutPrefix(data, "pick:")
	if !found {
		return "", 0, false
	}
	id, n, found := strings.Cut(rest, ":")
	if !found || id == "" {
		return "", 0, false
	}
	option, err := strconv.Atoi(n)
	if err != nil || option < 0 {
		return "", 0, false
	}
	return id, option, true
}

func pageCount(words int) int {
	return max(1, (words+gapsPerPage-1)/gapsPerPage)
}

func clampPage(page, words int) int {
	return min(max(page, 0), pageCount(words)-1)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "…"
}
