// Package notify carries entity change notifications between the CRUD layer
// and the index orchestrator over Kafka. Invalidation is deliberately coarse:
// any event on the topic marks the whole index stale, regardless of which
// collection changed.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/openchat-labs/chatsearch/pkg/config"
	"github.com/openchat-labs/chatsearch/pkg/kafka"
	"github.com/openchat-labs/chatsearch/pkg/metrics"
)

// ChangeEvent describes a write to one of the watched entity collections.
type ChangeEvent struct {
	Entity     string    `json:"entity"`
	ID         string    `json:"id"`
	Op         string    `json:"op"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Listener consumes the entity-changes topic and invokes onChange for every
// event.
type Listener struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewListener creates a Listener that calls onChange on every change event.
// m may be nil.
func NewListener(cfg config.KafkaConfig, onChange func(), m *metrics.Metrics) *Listener {
	logger := slog.Default().With("component", "change-listener")
	handler := func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ChangeEvent](value)
		if err != nil {
			// Invalidate anyway: an undecodable event still means
			// something changed.
			logger.Error("failed to decode change event", "key", string(key), "error", err)
		} else {
			logger.Debug("change event received",
				"entity", event.Entity,
				"id", event.ID,
				"op", event.Op,
			)
		}
		onChange()
		if m != nil {
			m.ChangeEventsTotal.Inc()
		}
		return nil
	}
	return &Listener{
		consumer: kafka.NewConsumer(cfg, cfg.Topics.EntityChanges, handler),
		logger:   logger,
	}
}

// Start begins consuming change events. It blocks until ctx is cancelled.
func (l *Listener) Start(ctx context.Context) error {
	l.logger.Info("change listener starting")
	return l.consumer.Start(ctx)
}

// Close closes the underlying consumer.
func (l *Listener) Close() error {
	return l.consumer.Close()
}

// Publisher is the emitting half of the change feed, used by the storage
// layer (and tests) to announce writes.
type Publisher struct {
	producer *kafka.Producer
}

// NewPublisher creates a Publisher on the entity-changes topic.
func NewPublisher(cfg config.KafkaConfig) *Publisher {
	return &Publisher{
		producer: kafka.NewProducer(cfg, cfg.Topics.EntityChanges),
	}
}

// EntityChanged publishes a change event for one entity write.
func (p *Publisher) EntityChanged(ctx context.Context, entity, id, op string) error {
	return p.producer.Publish(ctx, kafka.Event{
		Key: entity + ":" + id,
		Value: ChangeEvent{
			Entity:     entity,
			ID:         id,
			Op:         op,
			OccurredAt: time.Now().UTC(),
		},
	})
}

// Close flushes and closes the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
