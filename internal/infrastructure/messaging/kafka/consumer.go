package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/internal/config"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MentionConsumer drives batch resolution from the mention intake topic.
// Each message carries one resolution BatchRequest as JSON. Offsets are
// committed only after the batch is fully processed, giving at-least-once
// semantics; resolution is deterministic, so redelivery is harmless.
//
// Failed batches are retried in place: fetching past a failed message and
// later committing any newer offset would implicitly commit the failed one
// too, since group commits mark a high-water position rather than
// acknowledging individual messages.
type MentionConsumer struct {
	reader     ReaderInterface
	service    appres.Service
	logger     logging.Logger
	maxRetries int
	backoff    time.Duration
}

// NewMentionConsumer constructs a consumer over the configured intake topic.
func NewMentionConsumer(cfg config.KafkaConfig, svc appres.Service, log logging.Logger) *MentionConsumer {
	startOffset := kafka.FirstOffset
	if cfg.AutoOffsetReset == "latest" {
		startOffset = kafka.LastOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.MentionTopic,
		StartOffset: startOffset,
	})
	retries := cfg.ConsumerRetries
	if retries == 0 {
		retries = config.DefaultKafkaConsumerRetries
	}
	backoff := cfg.RetryBackoff
	if backoff == 0 {
		backoff = config.DefaultKafkaRetryBackoff
	}
	return &MentionConsumer{reader: reader, service: svc, logger: log, maxRetries: retries, backoff: backoff}
}

// Run consumes until ctx is cancelled. Malformed messages are logged and
// committed rather than poisoning the partition. A batch that fails
// resolution is retried in place with exponential backoff; once retries are
// exhausted Run returns without committing, so the batch is redelivered
// after the consumer restarts.
func (c *MentionConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to fetch mention batch")
		}

		var req appres.BatchRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			c.logger.Error("dropping malformed mention batch",
				logging.Int("offset", int(msg.Offset)), logging.Err(err))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("commit failed", logging.Err(err))
			}
			continue
		}

		if err := c.resolveWithRetry(ctx, req); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.IsCode(err, errors.ErrCodeEmptyBatch) {
				// Empty batches are producer noise, not retryable work.
				c.logger.Warn("skipping empty mention batch", logging.Int("offset", int(msg.Offset)))
				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.logger.Error("commit failed", logging.Err(err))
				}
				continue
			}
			c.logger.Error("batch resolution failed after retries, stopping without commit",
				logging.String("batch_id", req.BatchID), logging.Err(err))
			return errors.Wrap(err, errors.ErrCodeExternalService, "mention batch resolution exhausted retries")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit failed", logging.Err(err))
		}
	}
}

// resolveWithRetry runs the batch, retrying transient failures in place up
// to maxRetries times with doubling backoff. Empty-batch errors and context
// cancellation are returned immediately.
func (c *MentionConsumer) resolveWithRetry(ctx context.Context, req appres.BatchRequest) error {
	delay := c.backoff
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("batch resolution failed, retrying",
				logging.String("batch_id", req.BatchID),
				logging.Int("attempt", attempt),
				logging.Duration("backoff", delay),
				logging.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		_, err = c.service.ResolveBatch(ctx, req)
		if err == nil || errors.IsCode(err, errors.ErrCodeEmptyBatch) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// Close shuts the underlying reader down.
func (c *MentionConsumer) Close() error {
	return c.reader.Close()
}
