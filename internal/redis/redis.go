package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	redisClient "github.com/go-redis/redis/v8"
)

type DBManager struct {
	client *redisClient.Client
	ttl    time.Duration
}

// NewDBManager connects to a TLS redis at addr. ttl bounds how long an
// untouched draft is kept; zero keeps drafts forever.
func NewDBManager(addr, password string, ttl time.Duration) (*DBManager, error) {
	url := addr
	if !strings.Contains(addr, "://") {
		url = fmt.Sprintf("rediss://default:%s@%s", password, addr)
	}
	opt, err := redisClient.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewFromClient(redisClient.NewClient(opt), ttl), nil
}

func NewFromClient(client *redisClient.Client, ttl time.Duration) *DBManager {
	return &DBManager{client: client, ttl: ttl}
}

func (redis *DBManager) Ping(ctx context.Context) error {
	return redis.client.Ping(ctx).Err()
}

func (redis *DBManager) Close() error {
	return redis.client.Close()
}
