package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a component with a start and shutdown lifecycle.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs the consumers reading from one subscriber and owns that
// subscriber's lifetime.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger
	consumers  []Runnable
	started    []Runnable
}

// NewConsumerGroup creates an empty group around subscriber.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers consumers with the group. It must be called before Start.
func (g *ConsumerGroup) Add(consumers ...Runnable) {
	g.consumers = append(g.consumers, consumers...)
}

// Start starts the consumers in registration order. When one fails, the ones
// already running are stopped and the error is returned.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			_ = g.stopStarted()

			return fmt.Errorf("start consumer %d: %w", i, err)
		}

		g.started = append(g.started, consumer)
	}

	g.logger.Info("consumer group started", zap.Int("consumers", len(g.started)))

	return nil
}

// Shutdown stops the running consumers in reverse order, then closes the subscriber.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group", zap.Int("consumers", len(g.started)))

	err := g.stopStarted()

	return errors.Join(err, g.subscriber.Close())
}

func (g *ConsumerGroup) stopStarted() error {
	var errs []error

	for i := len(g.started) - 1; i >= 0; i-- {
		if err := g.started[i].Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	g.started = nil

	return errors.Join(errs...)
}
