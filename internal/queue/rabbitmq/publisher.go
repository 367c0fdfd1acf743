package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"notification_center/internal/config"
	"notification_center/internal/queue"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, []byte, string) error { return nil }

// Publisher sends notification inputs to the topic exchange the Consumer
// reads from. Routing keys look like "<prefix>.<type>".
type Publisher struct {
	exchange string
	logger   *zap.Logger
	session  *session
}

func NewPublisher(cfg *config.Config, logger *zap.Logger) queue.Publisher {
	if cfg.RabbitMQURL == "" {
		return noopPublisher{}
	}
	exchange := cfg.RabbitExchange
	return &Publisher{
		exchange: exchange,
		logger:   logger,
		session: &session{
			url: cfg.RabbitMQURL,
			declare: func(ch *amqp.Channel) error {
				return declareExchange(ch, exchange, amqp.ExchangeTopic)
			},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, payload []byte, routingKey string) error {
	err := p.session.do(ctx, func(ch *amqp.Channel) error {
		return ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      traceHeaders(ctx),
			Body:         payload,
		})
	})
	if err != nil {
		p.logger.Error("rabbitmq publish failed", zap.String("routing_key", routingKey), zap.Error(err))
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.session.close()
	return nil
}
