// Package repositories contains the PostgreSQL persistence implementations
// behind the application-layer repository ports.
package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// MappingRepository persists resolution results per batch.
type MappingRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewMappingRepository constructs a ready-to-use MappingRepository.
func NewMappingRepository(pool *pgxpool.Pool, log logging.Logger) *MappingRepository {
	return &MappingRepository{pool: pool, logger: log}
}

// SaveBatch inserts every mapping of a batch in one round-trip using the
// COPY protocol.
func (r *MappingRepository) SaveBatch(ctx context.Context, batchID string, mappings []mapping.Mapping) error {
	if len(mappings) == 0 {
		return nil
	}
	r.logger.Debug("MappingRepository.SaveBatch",
		logging.String("batch_id", batchID), logging.Int("count", len(mappings)))

	rows := make([][]interface{}, 0, len(mappings))
	for _, m := range mappings {
		var termID interface{}
		if m.TermID != "" {
			termID = string(m.TermID)
		}
		var spanStart, spanEnd interface{}
		if m.Mention.Span != nil {
			spanStart, spanEnd = m.Mention.Span.Start, m.Mention.Span.End
		}
		rows = append(rows, []interface{}{
			batchID, m.Mention.Text, string(m.Mention.ContextCategory), m.Mention.DocumentID,
			spanStart, spanEnd, termID, m.Confidence, string(m.Status),
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"mention_mappings"},
		[]string{"batch_id", "mention_text", "context_category", "document_id",
			"span_start", "span_end", "term_id", "confidence", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to copy mappings")
	}
	return nil
}

// ListByBatch returns the persisted mappings of one batch in insertion
// order.
func (r *MappingRepository) ListByBatch(ctx context.Context, batchID string) ([]mapping.Mapping, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT mention_text, context_category, document_id, span_start, span_end,
		       term_id, confidence, status
		FROM mention_mappings
		WHERE batch_id = $1
		ORDER BY id`, batchID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query mappings")
	}
	defer rows.Close()

	var out []mapping.Mapping
	for rows.Next() {
		var (
			m                  mapping.Mapping
			category, status   string
			termID             *string
			spanStart, spanEnd *int
		)
		if err := rows.Scan(&m.Mention.Text, &category, &m.Mention.DocumentID,
			&spanStart, &spanEnd, &termID, &m.Confidence, &status); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan mapping row")
		}
		m.Mention.ContextCategory = vocab.TermCategory(category)
		if spanStart != nil && spanEnd != nil {
			m.Mention.Span = &mapping.Span{Start: *spanStart, End: *spanEnd}
		}
		if termID != nil {
			m.TermID = vocab.TermID(*termID)
		}
		m.Status = mapping.MappingStatus(status)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "mapping rows iteration failed")
	}
	return out, nil
}

// CountByStatus aggregates mapping outcomes for a batch.
func (r *MappingRepository) CountByStatus(ctx context.Context, batchID string) (map[mapping.MappingStatus]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM mention_mappings WHERE batch_id = $1 GROUP BY status`, batchID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count mappings")
	}
	defer rows.Close()

	counts := make(map[mapping.MappingStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan count row")
		}
		counts[mapping.MappingStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "count rows iteration failed")
	}
	return counts, nil
}
