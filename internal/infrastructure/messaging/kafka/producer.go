// Package kafka connects the engine to its streaming edges: mention batches
// arrive on the intake topic, canonical facts and review items leave on the
// output topics.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/phytokg/termlink/internal/config"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits deduplication output. Canonical facts are keyed by their
// triple so that updates to the same fact land in one partition in order.
type Publisher struct {
	canonical WriterInterface
	review    WriterInterface
	logger    logging.Logger
}

func newWriter(cfg config.KafkaConfig, topic string) *kafka.Writer {
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}
	maxAttempts := cfg.ProducerRetries + 1
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            maxAttempts,
		BatchSize:              batchSize,
		BatchTimeout:           time.Second,
		AllowAutoTopicCreation: cfg.AutoCreateTopics,
	}
}

// NewPublisher constructs the output-topic writers from configuration.
func NewPublisher(cfg config.KafkaConfig, log logging.Logger) *Publisher {
	return &Publisher{
		canonical: newWriter(cfg, cfg.FactTopic),
		review:    newWriter(cfg, cfg.ReviewTopic),
		logger:    log,
	}
}

// PublishCanonical implements the dedup service's Publisher port.
func (p *Publisher) PublishCanonical(ctx context.Context, facts []mapping.CanonicalFact) error {
	if len(facts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(facts))
	for i := range facts {
		data, err := json.Marshal(&facts[i])
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal canonical fact")
		}
		msgs = append(msgs, kafka.Message{Key: []byte(facts[i].Key()), Value: data})
	}
	if err := p.canonical.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish canonical facts")
	}
	p.logger.Debug("canonical facts published", logging.Int("count", len(facts)))
	return nil
}

// PublishReview implements the dedup service's Publisher port.
func (p *Publisher) PublishReview(ctx context.Context, items []mapping.ReviewItem) error {
	if len(items) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(items))
	for i := range items {
		data, err := json.Marshal(&items[i])
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal review item")
		}
		msgs = append(msgs, kafka.Message{Value: data})
	}
	if err := p.review.WriteMessages(ctx, msgs...); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish review items")
	}
	p.logger.Debug("review items published", logging.Int("count", len(items)))
	return nil
}

// Close flushes and closes both writers.
func (p *Publisher) Close() error {
	cErr := p.canonical.Close()
	rErr := p.review.Close()
	if cErr != nil {
		return cErr
	}
	return rErr
}
