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
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"notification_center/internal/config"
	"notification_center/internal/domain"
	"notification_center/internal/model"
	"notification_center/internal/queue"
	"notification_center/internal/service/notify"
)

type noopConsumer struct{}

func (n *noopConsumer) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type Consumer struct {
	url         string
	svc         notify.Notifier
	logger      *zap.Logger
	exchange    string
	queue       string
	routingKey  string
	consumerTag string
}

func NewConsumer(cfg *config.Config, svc notify.Notifier, logger *zap.Logger) queue.Consumer {
	if cfg.RabbitMQURL == "" {
		return &noopConsumer{}
	}
	return &Consumer{
		url:         cfg.RabbitMQURL,
		svc:         svc,
		logger:      logger,
		exchange:    cfg.RabbitExchange,
		queue:       cfg.RabbitQueue,
		routingKey:  cfg.RabbitRoutingKey,
		consumerTag: cfg.RabbitConsumerTag,
	}
}

// Start consumes the inbox queue until ctx is done. Every delivery is acked;
// malformed messages are logged and dropped rather than requeued.
func (r *Consumer) Start(ctx context.Context) error {
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.consume_loop")
	span.SetAttributes(r.spanAttributes(r.routingKey)...)
	defer span.End()

	conn, ch, err := dial(ctx, r.url)
	if err != nil {
		return fail(span, "dial failed", err)
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	queueName, err := r.declareInbox(ch)
	if err != nil {
		return fail(span, "topology failed", err)
	}

	deliveries, err := ch.Consume(queueName, r.consumerTag, false, false, false, false, nil)
	if err != nil {
		return fail(span, "consume failed", fmt.Errorf("rabbitmq consume: %w", err))
	}

	r.logger.Info("RabbitMQ consumer started",
		zap.String("exchange", r.exchange),
		zap.String("queue", queueName),
		zap.String("routing_key", r.routingKey),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return fail(span, "deliveries closed", errors.New("rabbitmq deliveries closed"))
			}
			if err := r.handleMessage(ctx, msg); err != nil {
				span.RecordError(err)
				return err
			}
		}
	}
}

// declareInbox sets up the durable queue bound to the topic exchange.
func (r *Consumer) declareInbox(ch *amqp.Channel) (string, error) {
	if err := ch.Qos(10, 0, false); err != nil {
		return "", fmt.Errorf("rabbitmq qos: %w", err)
	}
	if err := declareExchange(ch, r.exchange, amqp.ExchangeTopic); err != nil {
		return "", err
	}
	q, err := ch.QueueDeclare(r.queue, true, false, false, false, nil)
	if err != nil {
		return "", fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, r.routingKey, r.exchange, false, nil); err != nil {
		return "", fmt.Errorf("rabbitmq queue bind: %w", err)
	}
	return q.Name, nil
}

func (r *Consumer) spanAttributes(routingKey string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", r.exchange),
		attribute.String("messaging.destination_kind", "exchange"),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
	}
}

func fail(span trace.Span, status string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}

func (r *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery) error {
	ctx = withTraceHeaders(ctx, msg.Headers)
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.handle_message")
	span.SetAttributes(r.spanAttributes(msg.RoutingKey)...)
	defer span.End()

	input, err := decodeInput(msg.Body)
	if err != nil {
		_ = fail(span, "rejected", err)
		r.logger.Warn("rabbitmq message dropped",
			zap.String("routing_key", msg.RoutingKey),
			zap.Error(err),
		)
		return msg.Ack(false)
	}

	created := r.svc.Add(ctx, input)
	span.SetAttributes(attribute.Int64("notification.id", created.ID))
	return msg.Ack(false)
}

var errMissingFields = errors.New("type, title, message are required")

func decodeInput(body []byte) (model.NotificationInput, error) {
	var input model.NotificationInput
	if err := json.Unmarshal(body, &input); err != nil {
		return input, fmt.Errorf("invalid json: %w", err)
	}
	if input.Type == "" || input.Title == "" || input.Message == "" {
		return input, errMissingFields
	}
	if !domain.IsValidNotificationType(input.Type) {
		return input, fmt.Errorf("%w: %q", domain.ErrInvalidNotificationType, input.Type)
	}
	return input, nil
}
