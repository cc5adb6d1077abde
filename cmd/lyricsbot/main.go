package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sukalov/lyricsquiz/internal/bot"
	"github.com/sukalov/lyricsquiz/internal/bot/admin"
	"github.com/sukalov/lyricsquiz/internal/bot/client"
	"github.com/sukalov/lyricsquiz/internal/config"
	"github.com/sukalov/lyricsquiz/internal/db"
	"github.com/sukalov/lyricsquiz/internal/logger"
	"github.com/sukalov/lyricsquiz/internal/lyrics"
	"github.com/sukalov/lyricsquiz/internal/redis"
	"github.com/sukalov/lyricsquiz/internal/scoring"
	"github.com/sukalov/lyricsquiz/internal/state"
	"github.com/sukalov/lyricsquiz/internal/utils"
)

func main() {
	cfg, err := config.Bot()
	if err != nil {
		log.Fatalf("required env missing: %v", err)
	}
	logger.Setup(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	drafts, err := redis.NewDBManager(cfg.RedisURL, cfg.RedisPassword, cfg.DraftTTL)
	if err != nil {
		log.Fatalf("failed to configure redis: %v", err)
	}
	defer drafts.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := drafts.Ping(pingCtx); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	cancel()

	if err := db.Init(cfg.DatabaseURL, cfg.DatabaseToken); err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	defer db.Close()

	songbook := db.NewSongbook(db.Database)
	if err := songbook.Init(ctx); err != nil {
		log.Fatalf("failed to load songbook: %v", err)
	}
	authors := db.NewAuthors(db.Database)

	clientBot, err := bot.New("client", cfg.BotToken)
	if err != nil {
		log.Fatalf("failed to start client bot: %v", err)
	}
	if err := logger.Init(clientBot); err != nil {
		logger.L().Warn().Err(err).Msg("log channel disabled")
	}

	client.SetupHandlers(clientBot, client.Deps{
		States:   state.NewStateManager(drafts, scoring.DefaultUI()),
		Songbook: songbook,
		Importer: lyrics.NewService(),
		Counter:  drafts,
		Authors:  authors,
		Location: utils.Location(cfg.Timezone),
	})

	var adminBot *bot.Bot
	if cfg.AdminBotToken != "" {
		adminBot, err = bot.New("admin", cfg.AdminBotToken)
		if err != nil {
			log.Fatalf("failed to start admin bot: %v", err)
		}
		admin.SetupHandlers(adminBot, cfg.Admins, drafts, authors, songbook)
	}

	logger.Success(fmt.Sprintf("lyricsquiz bot started, %d songs in songbook", len(songbook.Songs())))

	<-ctx.Done()
	logger.Info("shutting down")
	clientBot.Stop()
	if adminBot != nil {
		adminBot.Stop()
	}
}
