package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrClosed is returned by Publish and Consume after Close.
var ErrClosed = errors.New("messaging: client closed")

// Messaging publishes and consumes messages on one broker.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

// Publisher sends a message to a topic (NATS subject, Pub/Sub topic id).
type Publisher interface {
	Publish(ctx context.Context, topic string, msg OutgoingMessage) (messageID string, err error)
}

// Consumer blocks delivering messages from a topic to handler until ctx ends.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one message. Returning an error requests redelivery.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a payload plus string headers.
type OutgoingMessage struct {
	Body []byte
	// Key is used for partitioning (Kafka) and ordering (Pub/Sub).
	Key     string
	Headers map[string]string
}

// Message is a received message.
type Message struct {
	ID         string
	Topic      string
	Body       []byte
	Headers    map[string]string
	Attempts   int
	ReceivedAt time.Time
}

// Header returns a header value, or "".
func (m Message) Header(key string) string {
	return m.Headers[key]
}
