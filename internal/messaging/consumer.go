package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single decoded event. Returning an error nacks the message
// so the transport redelivers it.
type Handler[T any] func(ctx context.Context, event *T) error

// errMalformed marks a payload that can never be decoded. Such messages are
// acked and dropped instead of being redelivered forever.
var errMalformed = errors.New("malformed payload")

// Consumer decodes JSON events from one topic and passes them to a typed handler.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewConsumer creates a consumer for events of type T published on topic.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
		done:       make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes to the topic and processes messages in the background
// until ctx is cancelled or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		cancel()

		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}

	c.cancel = cancel

	go func() {
		defer close(c.done)

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				c.settle(msg, c.process(ctx, msg))
			}
		}
	}()

	return nil
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) error {
	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("%w: %w", errMalformed, err)
	}

	return c.handler(ctx, &event)
}

// settle acks or nacks msg depending on the processing outcome.
func (c *Consumer[T]) settle(msg *message.Message, err error) {
	logger := c.logger.With(zap.String("message_id", msg.UUID))

	switch {
	case err == nil:
		msg.Ack()
		logger.Debug("processed event")
	case errors.Is(err, errMalformed):
		logger.Error("dropping undecodable event", zap.Error(err))
		msg.Ack()
	default:
		logger.Error("failed to handle event", zap.Error(err))
		msg.Nack()
	}
}

// Shutdown stops the consumer and waits for the message in flight, if any.
// It is a no-op for a consumer that was never started.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel == nil {
		return nil
	}

	c.cancel()
	<-c.done

	return nil
}
