package web

import (
	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ParseRequest struct {
	Lyrics string `json:"lyrics"`
}

type ParseResponse struct {
	Segments    []lyrics.Segment `json:"segments"`
	Words       []lyrics.Word    `json:"words"`
	WordsToFind string           `json:"wordsToFind"`
}

// ScoreRequest replays a preview: answers are applied in gap order, then the action runs
type ScoreRequest struct {
	Words   []lyrics.Word     `json:"words"`
	Answers map[string]string `json:"answers"`
	Action  string            `json:"action"`
	Player  string            `json:"player"`
}

type ScoreResponse struct {
	Outcome  scoring.Outcome  `json:"outcome"`
	Snapshot scoring.Snapshot `json:"snapshot"`
}

type ExportRequest struct {
	Title  string `json:"title"`
	Lyrics string `json:"lyrics"`
	// Audio is an optional data:audio/...;base64 uri
	Audio string `json:"audio,omitempty"`
}
