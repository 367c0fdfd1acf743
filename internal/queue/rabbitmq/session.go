package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// defaultDialTimeout bounds the TCP connect and AMQP handshake when the caller
// gave no deadline.
const defaultDialTimeout = 10 * time.Second

// session keeps one lazily dialed publish channel and redials after the
// broker closes it. declare runs on every fresh channel.
type session struct {
	url     string
	declare func(*amqp.Channel) error

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// do runs fn on the cached channel, dialing first if needed. A redial never
// outlives ctx's deadline.
func (s *session) do(ctx context.Context, fn func(*amqp.Channel) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channelLocked(ctx)
	if err != nil {
		return err
	}
	if err := fn(ch); err != nil {
		s.resetLocked()
		return err
	}
	return nil
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *session) channelLocked(ctx context.Context) (*amqp.Channel, error) {
	if s.ch != nil && !s.ch.IsClosed() {
		return s.ch, nil
	}
	s.resetLocked()

	conn, ch, err := dial(ctx, s.url)
	if err != nil {
		return nil, err
	}
	if s.declare != nil {
		if err := s.declare(ch); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, err
		}
	}
	s.conn, s.ch = conn, ch
	return ch, nil
}

func (s *session) resetLocked() {
	if s.ch != nil {
		_ = s.ch.Close()
		s.ch = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

func dial(ctx context.Context, url string) (*amqp.Connection, *amqp.Channel, error) {
	timeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	if timeout <= 0 {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", context.DeadlineExceeded)
	}

	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return conn, ch, nil
}

func declareExchange(ch *amqp.Channel, name, kind string) error {
	if err := ch.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	return nil
}
