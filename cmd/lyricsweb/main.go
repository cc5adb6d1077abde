package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/sukalov/lyricsquiz/internal/audio"
	"github.com/sukalov/lyricsquiz/internal/config"
	"github.com/sukalov/lyricsquiz/internal/db"
	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/utils"
	"github.com/sukalov/lyricsquiz/internal/web"
)

func main() {
	cfg, err := config.Web()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger.Setup(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	var songs web.Songbook
	if cfg.DatabaseURL != "" {
		if err := db.Init(cfg.DatabaseURL, cfg.DatabaseToken); err != nil {
			log.Fatalf("failed to init database: %v", err)
		}
		defer db.Close()

		songbook := db.NewSongbook(db.Database)
		if err := songbook.Init(ctx); err != nil {
			log.Fatalf("failed to load songbook: %v", err)
		}
		songs = songbook
	}

	handler := web.NewHandler(songs, utils.Location(cfg.Timezone))
	server := &fasthttp.Server{
		Handler: handler.Route,
		Name:    "lyricsquiz",
		// base64 grows the audio by a third, plus the JSON around it
		MaxRequestBodySize: audio.MaxBytes*4/3 + 1<<20,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
	}

	logger.L().Info().Str("addr", cfg.HTTPAddr).Bool("songbook", songs != nil).Msg("starting server")
	go func() {
		if err := server.ListenAndServe(cfg.HTTPAddr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	if err := server.Shutdown(); err != nil {
		logger.Error(err.Error())
	}
}
