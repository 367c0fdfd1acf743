package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store keeps each slot as a plain string key.
type Store struct {
	client goredis.UniversalClient
	log    *zap.Logger
}

func New(client goredis.UniversalClient, logger *zap.Logger) *Store {
	return &Store{client: client, log: logger}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.log.Error("redis get slot failed", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.log.Error("redis set slot failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("redis delete slot failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
