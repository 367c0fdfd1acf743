package store

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notification_center/internal/config"
	"notification_center/internal/db"
	"notification_center/internal/queue/rabbitmq"
	"notification_center/internal/repository"
	"notification_center/internal/store/memory"
	"notification_center/internal/store/mysql"
	"notification_center/internal/store/redis"
)

// NewRedisClient connects only when a Redis backend was selected; otherwise it
// returns a nil client. The cleanup closes the client and is always safe to
// call.
func NewRedisClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	noop := func() {}
	if cfg.StorageBackend() != config.BackendRedis && cfg.ChangeFeedBackend() != config.BackendRedis {
		return nil, noop, nil
	}
	if cfg.RedisURL == "" {
		return nil, noop, fmt.Errorf("redis backend selected without REDIS_URL")
	}
	client, err := redis.Connect(context.Background(), redis.ConnectOptions{
		URL:            cfg.RedisURL,
		ConnectTimeout: 10 * time.Second,
		RetryAttempts:  3,
		RetryInterval:  time.Second,
	})
	if err != nil {
		logger.Error("redis connect failed", zap.Error(err))
		return nil, noop, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

func NewStore(cfg *config.Config, rdb *goredis.Client, logger *zap.Logger) (repository.SlotStore, error) {
	switch backend := cfg.StorageBackend(); backend {
	case config.BackendMemory:
		return memory.New(logger), nil
	case config.BackendRedis:
		return redis.New(rdb, logger), nil
	case config.BackendMySQL:
		if cfg.MySQLDSN == "" {
			return nil, fmt.Errorf("mysql backend selected without MYSQL_DSN")
		}
		sqlDB, err := mysql.Open(context.Background(), cfg.MySQLDSN, 10*time.Second)
		if err != nil {
			logger.Error("mysql connect failed", zap.Error(err))
			return nil, err
		}
		return mysql.New(db.New(sqlDB), logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func NewFeed(cfg *config.Config, rdb *goredis.Client, logger *zap.Logger) (repository.ChangeFeed, error) {
	switch backend := cfg.ChangeFeedBackend(); backend {
	case config.BackendMemory:
		return memory.NewBus(), nil
	case config.BackendRedis:
		return redis.NewFeed(rdb, cfg.RedisChannel, logger), nil
	case config.BackendRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return nil, fmt.Errorf("rabbitmq feed selected without RABBITMQ_URL")
		}
		return rabbitmq.NewFeed(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown feed backend %q", backend)
	}
}
