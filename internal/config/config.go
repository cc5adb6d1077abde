package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sukalov/lyricsquiz/internal/utils"
)

type Config struct {
	BotToken string
	// AdminBotToken enables the admin bot when set
	AdminBotToken string
	Admins        []string

	RedisURL      string
	RedisPassword string
	DraftTTL      time.Duration

	DatabaseURL   string
	DatabaseToken string

	HTTPAddr string
	LogLevel string
	Timezone string
	Workers  int
}

func defaults() Config {
	return Config{
		DraftTTL: utils.GetenvDuration("DRAFT_TTL", 7*24*time.Hour),
		HTTPAddr: utils.Getenv("HTTP_ADDR", ":8080"),
		LogLevel: utils.Getenv("LOG_LEVEL", "info"),
		Timezone: utils.Getenv("TZ_NAME", "Europe/Moscow"),
		Workers:  utils.GetenvInt("EXPORT_WORKERS", 8),
	}
}

// Bot loads the configuration of the telegram front end
func Bot() (Config, error) {
	env, err := utils.LoadEnv([]string{"BOT_TOKEN", "REDIS_URL", "REDIS_PASSWORD", "TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN"})
	if err != nil {
		return Config{}, fmt.Errorf("failed to load bot env: %w", err)
	}

	cfg := defaults()
	cfg.BotToken = env["BOT_TOKEN"]
	cfg.RedisURL = env["REDIS_URL"]
	cfg.RedisPassword = env["REDIS_PASSWORD"]
	cfg.DatabaseURL = env["TURSO_DATABASE_URL"]
	cfg.DatabaseToken = env["TURSO_AUTH_TOKEN"]
	cfg.AdminBotToken = utils.Getenv("ADMIN_BOT_TOKEN", "")
	cfg.Admins = splitList(utils.Getenv("ADMIN_USERNAMES", ""))
	return cfg, nil
}

// Web loads the configuration of the HTTP API. The songbook is optional.
func Web() (Config, error) {
	cfg := defaults()
	cfg.DatabaseURL = utils.Getenv("TURSO_DATABASE_URL", "")
	cfg.DatabaseToken = utils.Getenv("TURSO_AUTH_TOKEN", "")
	if cfg.DatabaseURL != "" && cfg.DatabaseToken == "" {
		return Config{}, fmt.Errorf("TURSO_AUTH_TOKEN is required with TURSO_DATABASE_URL")
	}
	return cfg, nil
}

// CLI only reads optional settings
func CLI() Config {
	return defaults()
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
