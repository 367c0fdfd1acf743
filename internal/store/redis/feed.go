package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notification_center/internal/repository"
)

// Feed publishes slot changes on one pub/sub channel.
type Feed struct {
	client  goredis.UniversalClient
	channel string
	log     *zap.Logger
}

func NewFeed(client goredis.UniversalClient, channel string, logger *zap.Logger) *Feed {
	return &Feed{client: client, channel: channel, log: logger}
}

func (f *Feed) Publish(ctx context.Context, change repository.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("redis feed marshal: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (f *Feed) Listen(ctx context.Context, handle func(repository.Change)) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	f.log.Info("redis change feed subscribed", zap.String("channel", f.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var change repository.Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				f.log.Warn("redis feed invalid json", zap.Error(err))
				continue
			}
			handle(change)
		}
	}
}
