package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"bizup-dashboard/internal/logger"
)

const (
	keyPrefix   = "bizup:snapshot:"
	snapshotTTL = 24 * time.Hour
)

// RedisStore keeps tab snapshots in Redis so they survive a restart.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisStore connects to addr and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr string, log *logger.Logger) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log = log.WithComponent("cache")
	log.Info("connected to Redis", "addr", addr, "ping", pong)

	return &RedisStore{client: client, ttl: snapshotTTL, log: log}, nil
}

func (s *RedisStore) LoadSnapshot(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	s.log.Info("Redis connection closed")
	return s.client.Close()
}
