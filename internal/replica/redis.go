package replica

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/config"
)

// RedisStore keeps each document as a hash; HSET merges fields into it.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, conf config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(redisOptions(conf))

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Mirror writes are a single attempt, so the client never retries.
func redisOptions(conf config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         conf.Addr,
		Password:     conf.Password,
		DB:           conf.DB,
		MaxRetries:   -1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	}
}

func (s *RedisStore) Upsert(ctx context.Context, kind Kind, id uint, fields Fields) error {
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		n := normalize(v)
		if n == nil {
			n = ""
		}
		values[k] = n
	}

	if err := s.client.HSet(ctx, DocumentPath(kind, id), values).Err(); err != nil {
		return fmt.Errorf("s.client.HSet -> %w", err)
	}

	return nil
}

func (s *RedisStore) Close(context.Context) error {
	return s.client.Close()
}
