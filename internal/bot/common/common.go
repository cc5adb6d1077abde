package common

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/lyricsquiz/internal/bot"
)

const HelpText = `bonjour! ici on fabrique des jeux de paroles à trous.

1. envoyez les paroles. terminez chaque mot à cacher par une étoile: "je veux mourir* ce soir"
2. choisissez les réponses dans l'aperçu et vérifiez
3. /title pour le titre, envoyez un fichier audio pour la musique
4. /export pour recevoir le jeu en fichier html
5. /clear pour tout effacer et recommencer

/import <lien> récupère des paroles sur amdm.ru
/save, /songs, /load <id>, /delete <id> pour le carnet de chansons`

func GetCommandHandlers() map[string]bot.Handler {
	return map[string]bot.Handler{
		"help": helpHandler,
	}
}

// GetCallbackHandlers returns common callback handlers
func GetCallbackHandlers() map[string]bot.Handler {
	return map[string]bot.Handler{
		"noop": noopHandler,
	}
}

func helpHandler(b bot.Messenger, update tgbotapi.Update) error {
	return b.SendMessage(update.Message.Chat.ID, HelpText)
}

// noopHandler acknowledges buttons that only label a row
func noopHandler(b bot.Messenger, update tgbotapi.Update) error {
	return b.AnswerCallback(update.CallbackQuery.ID, "")
}
