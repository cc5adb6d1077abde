package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	redisClient "github.com/go-redis/redis/v8"
)

const exportsKey = "exports"

func draftKey(chatID int64) string {
	return "draft:" + strconv.FormatInt(chatID, 10)
}

// GetDraft returns the stored draft of a chat, or nil when there is none
func (redis *DBManager) GetDraft(ctx context.Context, chatID int64) ([]byte, error) {
	data, err := redis.client.Get(ctx, draftKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draft for chat %d: %w", chatID, err)
	}
	return data, nil
}

// SetDraft stores the draft of a chat and refreshes its expiry
func (redis *DBManager) SetDraft(ctx context.Context, chatID int64, data []byte) error {
	if err := redis.client.Set(ctx, draftKey(chatID), data, redis.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set draft for chat %d: %w", chatID, err)
	}
	return nil
}

func (redis *DBManager) DeleteDraft(ctx context.Context, chatID int64) error {
	if err := redis.client.Del(ctx, draftKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft for chat %d: %w", chatID, err)
	}
	return nil
}

// IncrementExportCount counts exported games per chat and returns the new total
func (redis *DBManager) IncrementExportCount(ctx context.Context, chatID int64) (int64, error) {
	n, err := redis.client.HIncrBy(ctx, exportsKey, strconv.FormatInt(chatID, 10), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment export count for chat %d: %w", chatID, err)
	}
	return n, nil
}

// GetExportCounts retrieves the export counts of every chat
func (redis *DBManager) GetExportCounts(ctx context.Context) (map[int64]int, error) {
	result := make(map[int64]int)
	raw, err := redis.client.HGetAll(ctx, exportsKey).Result()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return result, nil
		}
		return nil, err
	}
	for chat, count := range raw {
		chatID, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			continue
		}
		countInt, err := strconv.Atoi(count)
		if err != nil {
			continue // skip invalid counts
		}
		result[chatID] = countInt
	}
	return result, nil
}
