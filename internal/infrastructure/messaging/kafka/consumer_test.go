package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/internal/testutil"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

type mockKafkaReader struct {
	messages  []kafka.Message
	next      int
	committed []int64
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if m.next >= len(m.messages) {
		return kafka.Message{}, context.Canceled
	}
	msg := m.messages[m.next]
	m.next++
	return msg, nil
}

func (m *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, msg := range msgs {
		m.committed = append(m.committed, msg.Offset)
	}
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.closed = true
	return nil
}

type mockResolutionService struct {
	resolveBatchFn func(ctx context.Context, req appres.BatchRequest) (*appres.BatchResult, error)
	batches        []appres.BatchRequest
}

func (m *mockResolutionService) ResolveMention(ctx context.Context, men mapping.Mention) (mapping.Mapping, error) {
	return mapping.Mapping{}, nil
}

func (m *mockResolutionService) ResolveBatch(ctx context.Context, req appres.BatchRequest) (*appres.BatchResult, error) {
	m.batches = append(m.batches, req)
	if m.resolveBatchFn != nil {
		return m.resolveBatchFn(ctx, req)
	}
	return &appres.BatchResult{BatchID: req.BatchID}, nil
}

func batchMessage(t *testing.T, offset int64, req appres.BatchRequest) kafka.Message {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: data}
}

func TestMentionConsumer_ProcessesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{messages: []kafka.Message{
		batchMessage(t, 1, appres.BatchRequest{BatchID: "b-1", Mentions: []mapping.Mention{{Text: "quercetin"}}}),
		batchMessage(t, 2, appres.BatchRequest{BatchID: "b-2", Mentions: []mapping.Mention{{Text: "kaempferol"}}}),
	}}
	svc := &mockResolutionService{}
	c := &MentionConsumer{reader: reader, service: svc, logger: logging.NewNopLogger()}

	require.NoError(t, c.Run(context.Background()))
	require.Len(t, svc.batches, 2)
	assert.Equal(t, "b-1", svc.batches[0].BatchID)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestMentionConsumer_MalformedMessageCommitted(t *testing.T) {
	reader := &mockKafkaReader{messages: []kafka.Message{
		{Offset: 1, Value: []byte("{not json")},
		batchMessage(t, 2, appres.BatchRequest{BatchID: "b-2", Mentions: []mapping.Mention{{Text: "quercetin"}}}),
	}}
	svc := &mockResolutionService{}
	log := testutil.NewMockLogger()
	c := &MentionConsumer{reader: reader, service: svc, logger: log}

	require.NoError(t, c.Run(context.Background()))
	// The poison message is skipped, the valid one processed.
	require.Len(t, svc.batches, 1)
	assert.Equal(t, []int64{1, 2}, reader.committed)
	assert.True(t, log.HasMessage("dropping malformed mention batch"))
}

func TestMentionConsumer_FailedBatchRetriedThenCommitted(t *testing.T) {
	reader := &mockKafkaReader{messages: []kafka.Message{
		batchMessage(t, 1, appres.BatchRequest{BatchID: "b-1", Mentions: []mapping.Mention{{Text: "quercetin"}}}),
		batchMessage(t, 2, appres.BatchRequest{BatchID: "b-2", Mentions: []mapping.Mention{{Text: "kaempferol"}}}),
	}}
	calls := 0
	svc := &mockResolutionService{resolveBatchFn: func(_ context.Context, req appres.BatchRequest) (*appres.BatchResult, error) {
		calls++
		if calls == 1 {
			return nil, errors.New(errors.ErrCodeDatabaseError, "persistence down")
		}
		return &appres.BatchResult{BatchID: req.BatchID}, nil
	}}
	c := &MentionConsumer{reader: reader, service: svc, logger: logging.NewNopLogger(),
		maxRetries: 3, backoff: time.Millisecond}

	require.NoError(t, c.Run(context.Background()))
	// The failed batch is retried in place, not skipped: a commit past a
	// failed offset would mark it consumed too.
	require.Len(t, svc.batches, 3)
	assert.Equal(t, "b-1", svc.batches[0].BatchID)
	assert.Equal(t, "b-1", svc.batches[1].BatchID)
	assert.Equal(t, "b-2", svc.batches[2].BatchID)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestMentionConsumer_ExhaustedRetriesStopWithoutCommit(t *testing.T) {
	reader := &mockKafkaReader{messages: []kafka.Message{
		batchMessage(t, 1, appres.BatchRequest{BatchID: "b-1", Mentions: []mapping.Mention{{Text: "quercetin"}}}),
		batchMessage(t, 2, appres.BatchRequest{BatchID: "b-2", Mentions: []mapping.Mention{{Text: "kaempferol"}}}),
	}}
	svc := &mockResolutionService{resolveBatchFn: func(context.Context, appres.BatchRequest) (*appres.BatchResult, error) {
		return nil, errors.New(errors.ErrCodeDatabaseError, "persistence down")
	}}
	c := &MentionConsumer{reader: reader, service: svc, logger: logging.NewNopLogger(),
		maxRetries: 2, backoff: time.Millisecond}

	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeExternalService, errors.GetCode(err))
	// Initial attempt plus two retries, all on the same batch; the second
	// message is never fetched and nothing is committed.
	require.Len(t, svc.batches, 3)
	for _, b := range svc.batches {
		assert.Equal(t, "b-1", b.BatchID)
	}
	assert.Empty(t, reader.committed)
}

func TestMentionConsumer_EmptyBatchCommitted(t *testing.T) {
	reader := &mockKafkaReader{messages: []kafka.Message{
		batchMessage(t, 1, appres.BatchRequest{BatchID: "b-1"}),
	}}
	svc := &mockResolutionService{resolveBatchFn: func(context.Context, appres.BatchRequest) (*appres.BatchResult, error) {
		return nil, errors.New(errors.ErrCodeEmptyBatch, "batch contains no mentions")
	}}
	c := &MentionConsumer{reader: reader, service: svc, logger: logging.NewNopLogger()}

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []int64{1}, reader.committed)
}

func TestMentionConsumer_Close(t *testing.T) {
	reader := &mockKafkaReader{}
	c := &MentionConsumer{reader: reader, service: &mockResolutionService{}, logger: logging.NewNopLogger()}
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
