package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"notification_center/internal/config"
	"notification_center/internal/repository"
)

// Feed fans slot changes out to every instance through a fanout exchange.
// Each Listen call owns an exclusive, auto-deleted queue.
type Feed struct {
	url      string
	exchange string
	logger   *zap.Logger
	session  *session
}

func NewFeed(cfg *config.Config, logger *zap.Logger) *Feed {
	exchange := cfg.RabbitSyncExchange
	return &Feed{
		url:      cfg.RabbitMQURL,
		exchange: exchange,
		logger:   logger,
		session: &session{
			url: cfg.RabbitMQURL,
			declare: func(ch *amqp.Channel) error {
				return declareExchange(ch, exchange, amqp.ExchangeFanout)
			},
		},
	}
}

func (f *Feed) Publish(ctx context.Context, change repository.Change) error {
	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("rabbitmq feed marshal: %w", err)
	}
	err = f.session.do(ctx, func(ch *amqp.Channel) error {
		return ch.PublishWithContext(ctx, f.exchange, "storage."+change.Key, false, false, amqp.Publishing{
			ContentType: "application/json",
			Headers:     traceHeaders(ctx),
			Body:        body,
		})
	})
	if err != nil {
		return fmt.Errorf("rabbitmq feed publish: %w", err)
	}
	return nil
}

func (f *Feed) Listen(ctx context.Context, handle func(repository.Change)) error {
	conn, ch, err := dial(ctx, f.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	if err := declareExchange(ch, f.exchange, amqp.ExchangeFanout); err != nil {
		return err
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", f.exchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue bind: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	f.logger.Info("RabbitMQ change feed started",
		zap.String("exchange", f.exchange),
		zap.String("queue", q.Name),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq feed deliveries closed")
			}
			f.deliver(ctx, msg, handle)
		}
	}
}

func (f *Feed) deliver(ctx context.Context, msg amqp.Delivery, handle func(repository.Change)) {
	_, span := otel.Tracer("rabbitmq").Start(withTraceHeaders(ctx, msg.Headers), "rabbitmq.handle_change")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", f.exchange),
		attribute.String("messaging.rabbitmq.routing_key", msg.RoutingKey),
	)
	defer span.End()

	var change repository.Change
	if err := json.Unmarshal(msg.Body, &change); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid json")
		f.logger.Warn("rabbitmq feed invalid json", zap.Error(err))
		return
	}
	handle(change)
}

func (f *Feed) Close() error {
	f.session.close()
	return nil
}
