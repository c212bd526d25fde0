package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	written   []kafka.Message
	closed    bool
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed = true
	return nil
}

func testPublisher() (*Publisher, *mockKafkaWriter, *mockKafkaWriter) {
	canonical := &mockKafkaWriter{}
	review := &mockKafkaWriter{}
	return &Publisher{canonical: canonical, review: review, logger: logging.NewNopLogger()}, canonical, review
}

func TestPublishCanonical(t *testing.T) {
	p, canonical, _ := testPublisher()

	facts := []mapping.CanonicalFact{
		{SubjectTermID: "C:2", Predicate: "affects", ObjectTermID: "T:1", Provenance: []string{"doc-1"}, SupportCount: 1},
	}
	require.NoError(t, p.PublishCanonical(context.Background(), facts))
	require.Len(t, canonical.written, 1)
	assert.Equal(t, "C:2|affects|T:1", string(canonical.written[0].Key))

	var got mapping.CanonicalFact
	require.NoError(t, json.Unmarshal(canonical.written[0].Value, &got))
	assert.Equal(t, facts[0], got)
}

func TestPublishCanonical_Empty(t *testing.T) {
	p, canonical, _ := testPublisher()
	require.NoError(t, p.PublishCanonical(context.Background(), nil))
	assert.Empty(t, canonical.written)
}

func TestPublishCanonical_WriteError(t *testing.T) {
	p, canonical, _ := testPublisher()
	canonical.writeFunc = func(context.Context, ...kafka.Message) error {
		return errors.New(errors.ErrCodeExternalService, "broker unreachable")
	}

	err := p.PublishCanonical(context.Background(), []mapping.CanonicalFact{{SubjectTermID: "C:2", Predicate: "p", ObjectTermID: "T:1"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
}

func TestPublishReview(t *testing.T) {
	p, _, review := testPublisher()

	items := []mapping.ReviewItem{{
		Fact:   mapping.Fact{Predicate: "affects"},
		Reason: "unmapped subject",
	}}
	require.NoError(t, p.PublishReview(context.Background(), items))
	require.Len(t, review.written, 1)

	var got mapping.ReviewItem
	require.NoError(t, json.Unmarshal(review.written[0].Value, &got))
	assert.Equal(t, "unmapped subject", got.Reason)
}

func TestPublisherClose(t *testing.T) {
	p, canonical, review := testPublisher()
	require.NoError(t, p.Close())
	assert.True(t, canonical.closed)
	assert.True(t, review.closed)
}
