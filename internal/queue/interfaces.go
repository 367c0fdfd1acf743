package queue

import "context"

// Consumer feeds broker messages into the notification list until ctx ends.
type Consumer interface {
	Start(ctx context.Context) error
}

// Publisher hands a JSON notification input to the broker. Delivery to the
// list happens asynchronously through a Consumer.
type Publisher interface {
	Publish(ctx context.Context, payload []byte, routingKey string) error
}
