package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sukalov/lyricsquiz/internal/utils"
)

var (
	ChannelID int64
	once      sync.Once
	mu        sync.RWMutex
	botClient BotClient
	local     = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

type BotClient interface {
	SendMessage(chatID int64, text string) error
}

// Setup configures the local structured output
func Setup(w io.Writer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	mu.Lock()
	local = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
}

// Init forwards every log line to the LOG_CHANNEL_ID chat as well
func Init(client BotClient) error {
	var initErr error
	once.Do(func() {
		env, err := utils.LoadEnv([]string{"LOG_CHANNEL_ID"})
		if err != nil {
			initErr = fmt.Errorf("failed to load LOG_CHANNEL_ID: %w", err)
			return
		}

		id, err := strconv.ParseInt(env["LOG_CHANNEL_ID"], 10, 64)
		if err != nil {
			initErr = fmt.Errorf("failed to parse LOG_CHANNEL_ID: %w", err)
			return
		}

		mu.Lock()
		ChannelID = id
		botClient = client
		mu.Unlock()
	})

	return initErr
}

// L returns the local structured logger
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := local
	return &l
}

func Info(message string) {
	L().Info().Msg(message)
	sendLog("ℹ️ INFO", message)
}

func Error(message string) {
	L().Error().Msg(message)
	sendLog("❌ ERROR", message)
}

func Debug(message string) {
	l := L()
	l.Debug().Msg(message)
	if l.GetLevel() <= zerolog.DebugLevel {
		sendLog("🔍 DEBUG", message)
	}
}

func Success(message string) {
	L().Info().Bool("success", true).Msg(message)
	sendLog("✅ SUCCESS", message)
}

func sendLog(prefix, message string) {
	mu.RLock()
	client, channel := botClient, ChannelID
	mu.RUnlock()
	if client == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s", timestamp, prefix, message)

	go func() {
		if err := client.SendMessage(channel, logMessage); err != nil {
			L().Warn().Err(err).Str("log", logMessage).Msg("failed to send log to channel")
		}
	}()
}

// LogWithErr logs message at info level when err is nil, otherwise at error
// level, and returns err wrapped with message.
func LogWithErr(message string, err error) error {
	if err == nil {
		Info(message)
		return nil
	}

	Error(fmt.Sprintf("%s\nError: %v", message, err))
	return fmt.Errorf("%s: %w", message, err)
}
