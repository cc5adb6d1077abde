package scoring

import (
	"strconv"
	"strings"
)

// UI holds every string, class name and state name that the live preview and
// the exported runtime must agree on. It is serialized into the exported
// document as-is.
type UI struct {
	States           StateNames `json:"states"`
	Placeholder      string     `json:"placeholder"`
	PlaceholderLabel string     `json:"placeholderLabel"`
	CorrectClass     string     `json:"correctClass"`
	IncorrectClass   string     `json:"incorrectClass"`
	CheckLabel       string     `json:"checkLabel"`
	RevealLabel      string     `json:"revealLabel"`

	// ScoreMessage uses {correct} and {total} placeholders
	ScoreMessage      string `json:"scoreMessage"`
	IncompleteMessage string `json:"incompleteMessage"`
	RevealedMessage   string `json:"revealedMessage"`

	AnonymousPlayer string `json:"anonymousPlayer"`
	Locale          string `json:"locale"`
	DateLayout      string `json:"-"`

	SummaryTitle   string `json:"summaryTitle"`
	NameLabel      string `json:"nameLabel"`
	DateLabel      string `json:"dateLabel"`
	CorrectLabel   string `json:"correctLabel"`
	ErrorsLabel    string `json:"errorsLabel"`
	CopyLabel      string `json:"copyLabel"`
	CopiedMessage  string `json:"copiedMessage"`
	CloseLabel     string `json:"closeLabel"`
	WelcomeTitle   string `json:"welcomeTitle"`
	WelcomeText    string `json:"welcomeText"`
	PlayerPrompt   string `json:"playerPrompt"`
	StartLabel     string `json:"startLabel"`
	NoAudioMessage string `json:"noAudioMessage"`
	WordsToFind    string `json:"wordsToFind"`
}

// StateNames maps each State to its wire name
type StateNames struct {
	Unanswered string `json:"unanswered"`
	Checked    string `json:"checked"`
	Revealed   string `json:"revealed"`
}

// DefaultUI returns the French strings of the game
func DefaultUI() UI {
	return UI{
		States: StateNames{
			Unanswered: string(Unanswered),
			Checked:    string(Checked),
			Revealed:   string(Revealed),
		},
		Placeholder:       Placeholder,
		PlaceholderLabel:  "---",
		CorrectClass:      "correct",
		IncorrectClass:    "incorrect",
		CheckLabel:        "Vérifier mes réponses",
		RevealLabel:       "Afficher les réponses",
		ScoreMessage:      "Vous avez {correct} sur {total} réponses correctes !",
		IncompleteMessage: "Veuillez remplir toutes les options avant de vérifier.",
		RevealedMessage:   "Les réponses ont été affichées.",
		AnonymousPlayer:   "Anonyme",
		Locale:            "fr-FR",
		DateLayout:        "02/01/2006",
		SummaryTitle:      "Résumé du jeu",
		NameLabel:         "Nom :",
		DateLabel:         "Date :",
		CorrectLabel:      "Bonnes réponses :",
		ErrorsLabel:       "Erreurs :",
		CopyLabel:         "Copier le résumé",
		CopiedMessage:     "Résumé copié !",
		CloseLabel:        "Fermer",
		WelcomeTitle:      "Bienvenue !",
		WelcomeText:       "Écoutez la chanson et complétez les paroles.",
		PlayerPrompt:      "Votre nom :",
		StartLabel:        "Commencer le jeu",
		NoAudioMessage:    "Aucun fichier audio sélectionné",
		WordsToFind:       "{total} mots à trouver",
	}
}

// ScoreText fills ScoreMessage the same way the exported runtime does
func (ui UI) ScoreText(correct, total int) string {
	return fill(ui.ScoreMessage, correct, total)
}

// WordsToFindText fills WordsToFind with the number of gaps
func (ui UI) WordsToFindText(total int) string {
	return fill(ui.WordsToFind, 0, total)
}

// SummaryText is the plain text copied from the completion summary
func (ui UI) SummaryText(s Summary) string {
	return strings.Join([]string{
		ui.SummaryTitle,
		ui.NameLabel + " " + s.Player,
		ui.DateLabel + " " + s.Date,
		ui.CorrectLabel + " " + strconv.Itoa(s.Correct),
		ui.ErrorsLabel + " " + strconv.Itoa(s.Errors),
	}, "\n")
}

func (ui UI) playerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ui.AnonymousPlayer
	}
	return name
}

func fill(message string, correct, total int) string {
	return strings.NewReplacer(
		"{correct}", strconv.Itoa(correct),
		"{total}", strconv.Itoa(total),
	).Replace(message)
}
