package termsource

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/phytokg/termlink/internal/config"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Neo4jSource loads terms from the curated ontology graph: (:Term) nodes
// with IS_A edges to their parents.
type Neo4jSource struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// NewNeo4jSource connects to the graph and verifies connectivity.
func NewNeo4jSource(cfg config.Neo4jConfig, log logging.Logger) (*Neo4jSource, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
			if cfg.ConnectionTimeout > 0 {
				c.SocketConnectTimeout = cfg.ConnectionTimeout
			}
		})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTermSourceFailure, "failed to create neo4j driver")
	}
	return &Neo4jSource{driver: driver, database: cfg.Database, logger: log}, nil
}

const termQuery = `
MATCH (t:Term)
OPTIONAL MATCH (t)-[:IS_A]->(p:Term)
RETURN t.id AS id,
       t.label AS label,
       coalesce(t.synonyms, []) AS synonyms,
       t.category AS category,
       coalesce(t.source_ontology, '') AS source_ontology,
       collect(p.id) AS parent_ids
ORDER BY id`

// Load implements Source.
func (s *Neo4jSource) Load(ctx context.Context) ([]vocab.TermRecord, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, termQuery, nil)
		if err != nil {
			return nil, err
		}
		var records []vocab.TermRecord
		for res.Next(ctx) {
			rec, err := recordToTerm(res.Record())
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		return records, res.Err()
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTermSourceFailure, "failed to load terms from graph")
	}

	records := result.([]vocab.TermRecord)
	s.logger.Info("terms loaded from graph", logging.Int("terms", len(records)))
	return records, nil
}

// Close releases the driver's connection pool.
func (s *Neo4jSource) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func recordToTerm(record *neo4j.Record) (vocab.TermRecord, error) {
	id, ok := stringValue(record, "id")
	if !ok {
		return vocab.TermRecord{}, errors.New(errors.ErrCodeTermSourceFailure, "term node missing id")
	}
	label, _ := stringValue(record, "label")
	category, _ := stringValue(record, "category")
	source, _ := stringValue(record, "source_ontology")

	rec := vocab.TermRecord{
		ID:             vocab.TermID(id),
		CanonicalLabel: label,
		Category:       vocab.TermCategory(category),
		SourceOntology: source,
	}
	for _, syn := range listValue(record, "synonyms") {
		if s, ok := syn.(string); ok && s != "" {
			rec.Synonyms = append(rec.Synonyms, s)
		}
	}
	for _, pid := range listValue(record, "parent_ids") {
		if p, ok := pid.(string); ok && p != "" {
			rec.ParentIDs = append(rec.ParentIDs, vocab.TermID(p))
		}
	}
	return rec, nil
}

func stringValue(record *neo4j.Record, key string) (string, bool) {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func listValue(record *neo4j.Record, key string) []any {
	v, ok := record.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, _ := v.([]any)
	return list
}
