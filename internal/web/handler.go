package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/sukalov/lyricsquiz/internal/artifact"
	"github.com/sukalov/lyricsquiz/internal/audio"
	"github.com/sukalov/lyricsquiz/internal/db"
	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
)

// Songbook is the read side of the saved songs
type Songbook interface {
	Songs() []db.Song
	FindSongByID(id string) (db.Song, bool)
}

type Handler struct {
	songs Songbook
	ui    scoring.UI
	loc   *time.Location
	now   func() time.Time
}

// NewHandler builds the API handler. songs may be nil when no songbook is configured.
func NewHandler(songs Songbook, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		songs: songs,
		ui:    scoring.DefaultUI(),
		loc:   loc,
		now:   time.Now,
	}
}

// Route dispatches a request to its handler
func (h *Handler) Route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	requestID := uuid.NewString()
	ctx.Response.Header.Set("X-Request-ID", requestID)
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type")

	start := time.Now()
	defer func() {
		logger.L().Info().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Int("status", ctx.Response.StatusCode()).
			Dur("took", time.Since(start)).
			Msg("request")
	}()

	if method == fasthttp.MethodOptions {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	switch {
	case path == "/api/health":
		h.HealthCheck(ctx)
	case path == "/api/parse" && method == fasthttp.MethodPost:
		h.Parse(ctx)
	case path == "/api/score" && method == fasthttp.MethodPost:
		h.Score(ctx)
	case path == "/api/export" && method == fasthttp.MethodPost:
		h.Export(ctx)
	case path == "/api/songs" && method == fasthttp.MethodGet:
		h.ListSongs(ctx)
	case strings.HasPrefix(path, "/api/songs/") && strings.HasSuffix(path, "/export") && method == fasthttp.MethodGet:
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/songs/"), "/export")
		if id == "" || strings.Contains(id, "/") {
			h.respondWithError(ctx, fasthttp.StatusNotFound, "not found")
			return
		}
		ctx.SetUserValue("id", id)
		h.ExportSong(ctx)
	default:
		h.respondWithError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (h *Handler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "failed to encode response"}`)
		return
	}

	ctx.SetBody(jsonData)
}

func (h *Handler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	h.respondWithJSON(ctx, statusCode, APIResponse{Success: false, Error: message})
}

func (h *Handler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	h.respondWithJSON(ctx, fasthttp.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

func (h *Handler) respondWithDocument(ctx *fasthttp.RequestCtx, title, doc string) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.Response.Header.Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName(title)}))
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(doc)
}

func decode(ctx *fasthttp.RequestCtx, v interface{}) error {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// HealthCheck handles GET /api/health
func (h *Handler) HealthCheck(ctx *fasthttp.RequestCtx) {
	h.respondWithSuccess(ctx, map[string]interface{}{
		"songbook": h.songs != nil,
		"time":     h.now().In(h.loc).Format(time.RFC3339),
	}, "ok")
}

// Parse handles POST /api/parse
func (h *Handler) Parse(ctx *fasthttp.RequestCtx) {
	var req ParseRequest
	if err := decode(ctx, &req); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	model := lyrics.Parse(req.Lyrics)
	h.respondWithSuccess(ctx, ParseResponse{
		Segments:    model.Segments,
		Words:       model.Words,
		WordsToFind: h.ui.WordsToFindText(len(model.Words)),
	}, "lyrics parsed")
}

// Score handles POST /api/score
func (h *Handler) Score(ctx *fasthttp.RequestCtx) {
	var req ScoreRequest
	if err := decode(ctx, &req); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	for id := range req.Answers {
		if !hasWord(req.Words, id) {
			h.respondWithError(ctx, fasthttp.StatusUnprocessableEntity, fmt.Errorf("%w: %s", scoring.ErrUnknownGap, id).Error())
			return
		}
	}

	session := scoring.NewSession(req.Words, h.ui)
	for _, w := range req.Words {
		value, ok := req.Answers[w.ID]
		if !ok || value == scoring.Placeholder {
			continue
		}
		next, err := session.Select(w.ID, value)
		if err != nil {
			h.respondWithError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
			return
		}
		session = next
	}

	var out scoring.Outcome
	switch req.Action {
	case "check":
		session, out = session.Check(req.Player, h.now().In(h.loc))
	case "reveal":
		session, out = session.Reveal()
	default:
		h.respondWithError(ctx, fasthttp.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	h.respondWithSuccess(ctx, ScoreResponse{Outcome: out, Snapshot: session.Snapshot()}, out.Message)
}

// Export handles POST /api/export and answers with the game document
func (h *Handler) Export(ctx *fasthttp.RequestCtx) {
	var req ExportRequest
	if err := decode(ctx, &req); err != nil {
		h.respondWithError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	var src *audio.Source
	if req.Audio != "" {
		parsed, err := audio.ParseDataURI(req.Audio)
		if err != nil {
			status := fasthttp.StatusBadRequest
			if errors.Is(err, audio.ErrTooLarge) {
				status = fasthttp.StatusRequestEntityTooLarge
			}
			h.respondWithError(ctx, status, err.Error())
			return
		}
		src = parsed
	}

	doc := artifact.Generate(req.Title, lyrics.Parse(req.Lyrics), src)
	h.respondWithDocument(ctx, req.Title, doc)
}

// ListSongs handles GET /api/songs
func (h *Handler) ListSongs(ctx *fasthttp.RequestCtx) {
	if h.songs == nil {
		h.respondWithError(ctx, fasthttp.StatusServiceUnavailable, "songbook is not configured")
		return
	}
	songs := h.songs.Songs()
	h.respondWithSuccess(ctx, map[string]interface{}{
		"songs": songs,
		"count": len(songs),
	}, "songs listed")
}

// ExportSong handles GET /api/songs/{id}/export
func (h *Handler) ExportSong(ctx *fasthttp.RequestCtx) {
	if h.songs == nil {
		h.respondWithError(ctx, fasthttp.StatusServiceUnavailable, "songbook is not configured")
		return
	}
	id, _ := ctx.UserValue("id").(string)
	song, ok := h.songs.FindSongByID(id)
	if !ok {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Errorf("%w: %s", db.ErrSongNotFound, id).Error())
		return
	}

	doc := artifact.Generate(song.Title, lyrics.Parse(song.Lyrics), nil)
	h.respondWithDocument(ctx, song.Title, doc)
}

func hasWord(words []lyrics.Word, id string) bool {
	for _, w := range words {
		if w.ID == id {
			return true
		}
	}
	return false
}
