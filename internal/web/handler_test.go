package web

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/sukalov/lyricsquiz/internal/db"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/scoring"
)

type fakeSongbook struct {
	songs []db.Song
}

func (f *fakeSongbook) Songs() []db.Song { return f.songs }

func (f *fakeSongbook) FindSongByID(id string) (db.Song, bool) {
	for _, s := range f.songs {
		if s.ID == id {
			return s, true
		}
	}
	return db.Song{}, false
}

func newHandler(songs Songbook) *Handler {
	h := NewHandler(songs, time.UTC)
	h.now = func() time.Time { return time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC) }
	return h
}

func do(h *Handler, method, path, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}
	h.Route(ctx)
	return ctx
}

func envelope(t *testing.T, ctx *fasthttp.RequestCtx, data interface{}) APIResponse {
	t.Helper()
	var raw struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(ctx.Response.Body(), &raw); err != nil {
		t.Fatalf("response is not an envelope: %v: %s", err, ctx.Response.Body())
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return raw.APIResponse
}

func TestHealth(t *testing.T) {
	ctx := do(newHandler(nil), fasthttp.MethodGet, "/api/health", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
	if !envelope(t, ctx, nil).Success {
		t.Fatalf("expect success")
	}
	if len(ctx.Response.Header.Peek("X-Request-ID")) == 0 {
		t.Fatalf("missing request id")
	}
}

func TestParse(t *testing.T) {
	ctx := do(newHandler(nil), fasthttp.MethodPost, "/api/parse", `{"lyrics":"a* b\nc d*"}`)

	var data ParseResponse
	resp := envelope(t, ctx, &data)
	if !resp.Success {
		t.Fatalf("parse failed: %s", resp.Error)
	}
	if len(data.Segments) != 5 || len(data.Words) != 2 || data.WordsToFind != "2 mots à trouver" {
		t.Fatalf("unexpected parse result %+v", data)
	}
	if !strings.Contains(string(ctx.Response.Body()), `"answer":"a","options"`) {
		t.Fatalf("words should carry their answers")
	}
}

func TestParseBadJSON(t *testing.T) {
	ctx := do(newHandler(nil), fasthttp.MethodPost, "/api/parse", `{`)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
	if envelope(t, ctx, nil).Success {
		t.Fatalf("expect failure")
	}
}

func scoreBody(t *testing.T, words []lyrics.Word, answers map[string]string, action string) string {
	t.Helper()
	b, err := json.Marshal(ScoreRequest{Words: words, Answers: answers, Action: action, Player: "Lina"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(b)
}

func TestScoreCheck(t *testing.T) {
	words := lyrics.Parse("a* b* c*").Words
	var wrong string
	for _, o := range words[0].Options {
		if o != words[0].Answer {
			wrong = o
		}
	}

	answers := map[string]string{words[0].ID: wrong, words[1].ID: words[1].Answer, words[2].ID: words[2].Answer}
	ctx := do(newHandler(nil), fasthttp.MethodPost, "/api/score", scoreBody(t, words, answers, "check"))

	var data ScoreResponse
	resp := envelope(t, ctx, &data)
	if !resp.Success {
		t.Fatalf("score failed: %s", resp.Error)
	}
	out := data.Outcome
	if !out.Complete || out.Correct != 2 || out.Total != 3 || out.Summary == nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Summary.Player != "Lina" || out.Summary.Date != "16/10/2026" {
		t.Fatalf("unexpected summary %+v", out.Summary)
	}
	if data.Snapshot.Verdicts[words[0].ID] != scoring.VerdictIncorrect {
		t.Fatalf("expect first gap incorrect")
	}
}

func TestScoreIncompleteAndReveal(t *testing.T) {
	words := lyrics.Parse("a* b*").Words
	h := newHandler(nil)

	ctx := do(h, fasthttp.MethodPost, "/api/score", scoreBody(t, words, map[string]string{words[0].ID: words[0].Answer}, "check"))
	var data ScoreResponse
	envelope(t, ctx, &data)
	if data.Outcome.Complete || data.Outcome.Summary != nil || data.Outcome.Message != scoring.DefaultUI().IncompleteMessage {
		t.Fatalf("unexpected outcome %+v", data.Outcome)
	}

	ctx = do(h, fasthttp.MethodPost, "/api/score", scoreBody(t, words, nil, "reveal"))
	data = ScoreResponse{}
	envelope(t, ctx, &data)
	if data.Outcome.State != scoring.Revealed || data.Outcome.Correct != 2 {
		t.Fatalf("unexpected reveal %+v", data.Outcome)
	}
}

func TestScoreRejectsUnknownInput(t *testing.T) {
	words := lyrics.Parse("a* b*").Words
	h := newHandler(nil)

	cases := []string{
		scoreBody(t, words, map[string]string{"mot9": "a"}, "check"),
		scoreBody(t, words, map[string]string{words[0].ID: "zzz"}, "check"),
	}
	for _, body := range cases {
		ctx := do(h, fasthttp.MethodPost, "/api/score", body)
		if ctx.Response.StatusCode() != fasthttp.StatusUnprocessableEntity {
			t.Fatalf("status %d for %s", ctx.Response.StatusCode(), body)
		}
	}

	ctx := do(h, fasthttp.MethodPost, "/api/score", scoreBody(t, words, nil, "guess"))
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
}

func TestExport(t *testing.T) {
	h := newHandler(nil)
	ctx := do(h, fasthttp.MethodPost, "/api/export", `{"title":"Je l'aime","lyrics":"à *mourir*","audio":"data:audio/mpeg;base64,SUQz"}`)

	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	if got := string(ctx.Response.Header.Peek("Content-Disposition")); got != "attachment; filename=jelaime_game.html" {
		t.Fatalf("disposition %q", got)
	}
	body := string(ctx.Response.Body())
	if !strings.HasPrefix(body, "<!DOCTYPE html>") || !strings.Contains(body, "data:audio/mpeg;base64,SUQz") {
		t.Fatalf("unexpected document")
	}

	ctx = do(h, fasthttp.MethodPost, "/api/export", `{"title":"x","lyrics":"a*","audio":"javascript:alert(1)"}`)
	if ctx.Response.StatusCode() != fasthttp.StatusBadRequest {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
}

func TestSongs(t *testing.T) {
	if ctx := do(newHandler(nil), fasthttp.MethodGet, "/api/songs", ""); ctx.Response.StatusCode() != fasthttp.StatusServiceUnavailable {
		t.Fatalf("status %d without songbook", ctx.Response.StatusCode())
	}

	h := newHandler(&fakeSongbook{songs: []db.Song{{ID: "s1", Title: "Mourir", Lyrics: "à *mourir*"}}})

	ctx := do(h, fasthttp.MethodGet, "/api/songs", "")
	var data struct {
		Songs []db.Song `json:"songs"`
		Count int       `json:"count"`
	}
	envelope(t, ctx, &data)
	if data.Count != 1 || data.Songs[0].ID != "s1" {
		t.Fatalf("unexpected songs %+v", data)
	}

	ctx = do(h, fasthttp.MethodGet, "/api/songs/s1/export", "")
	if ctx.Response.StatusCode() != fasthttp.StatusOK || !strings.Contains(string(ctx.Response.Body()), `id="mot1"`) {
		t.Fatalf("song export failed: %d", ctx.Response.StatusCode())
	}

	ctx = do(h, fasthttp.MethodGet, "/api/songs/nope/export", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
}

func TestNotFound(t *testing.T) {
	ctx := do(newHandler(nil), fasthttp.MethodGet, "/api/nothing", "")
	if ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
}
