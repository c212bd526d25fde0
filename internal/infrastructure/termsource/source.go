// Package termsource loads the controlled vocabulary from its storage
// backends: a JSON-lines term dump for offline runs and a Neo4j graph for
// deployments where the ontology is curated in place.
package termsource

import (
	"context"

	"github.com/phytokg/termlink/internal/config"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Source yields the full term set the index is built from.
type Source interface {
	Load(ctx context.Context) ([]vocab.TermRecord, error)
}

// New selects a Source from configuration.
func New(cfg *config.Config, log logging.Logger) (Source, error) {
	switch cfg.TermSource.Kind {
	case "file":
		return NewFileSource(cfg.TermSource.Path, log), nil
	case "neo4j":
		return NewNeo4jSource(cfg.Neo4j, log)
	default:
		return nil, errors.Newf(errors.ErrCodeValidation, "unknown term source kind %q", cfg.TermSource.Kind)
	}
}
