package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// CanonicalFactRepository persists the deduplicated fact set. The table is
// keyed by the normalized triple, so repeated batches merge instead of
// duplicating.
type CanonicalFactRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCanonicalFactRepository constructs a ready-to-use repository.
func NewCanonicalFactRepository(pool *pgxpool.Pool, log logging.Logger) *CanonicalFactRepository {
	return &CanonicalFactRepository{pool: pool, logger: log}
}

// UpsertCanonical writes the canonical facts of one batch. On triple
// conflict the provenance sets are unioned and the support count is
// recomputed from the merged provenance, mirroring the in-memory merge
// semantics.
func (r *CanonicalFactRepository) UpsertCanonical(ctx context.Context, batchID string, facts []mapping.CanonicalFact) error {
	if len(facts) == 0 {
		return nil
	}
	r.logger.Debug("CanonicalFactRepository.UpsertCanonical",
		logging.String("batch_id", batchID), logging.Int("count", len(facts)))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	const stmt = `
		INSERT INTO canonical_facts
			(subject_term_id, predicate, object_term_id, provenance, support_count, batch_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (subject_term_id, predicate, object_term_id) DO UPDATE SET
			provenance = ARRAY(
				SELECT DISTINCT doc
				FROM unnest(canonical_facts.provenance || EXCLUDED.provenance) AS doc
				ORDER BY doc
			),
			support_count = CASE
				WHEN cardinality(canonical_facts.provenance || EXCLUDED.provenance) > 0
				THEN (
					SELECT COUNT(DISTINCT doc)
					FROM unnest(canonical_facts.provenance || EXCLUDED.provenance) AS doc
				)
				ELSE canonical_facts.support_count + EXCLUDED.support_count
			END,
			batch_id = EXCLUDED.batch_id,
			updated_at = now()`

	for _, cf := range facts {
		if _, err := tx.Exec(ctx, stmt,
			string(cf.SubjectTermID), cf.Predicate, string(cf.ObjectTermID),
			cf.Provenance, cf.SupportCount, batchID,
		); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert canonical fact")
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit canonical facts")
	}
	return nil
}

// ListBySubject returns every canonical fact whose subject is the given
// term, ordered by predicate then object for stable output.
func (r *CanonicalFactRepository) ListBySubject(ctx context.Context, subject vocab.TermID) ([]mapping.CanonicalFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT subject_term_id, predicate, object_term_id, provenance, support_count
		FROM canonical_facts
		WHERE subject_term_id = $1
		ORDER BY predicate, object_term_id`, string(subject))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query canonical facts")
	}
	defer rows.Close()

	var out []mapping.CanonicalFact
	for rows.Next() {
		var cf mapping.CanonicalFact
		var subjectID, objectID string
		if err := rows.Scan(&subjectID, &cf.Predicate, &objectID, &cf.Provenance, &cf.SupportCount); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan canonical fact")
		}
		cf.SubjectTermID = vocab.TermID(subjectID)
		cf.ObjectTermID = vocab.TermID(objectID)
		out = append(out, cf)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "canonical fact rows iteration failed")
	}
	return out, nil
}
