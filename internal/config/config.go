// Package config defines all configuration structures for the termlink
// resolution engine. No I/O or parsing logic lives here, only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the mapping and
// canonical-fact stores.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// Neo4jConfig holds connection parameters for the graph-backed vocabulary
// source.
type Neo4jConfig struct {
	URI                   string        `mapstructure:"uri"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	ConnectionTimeout     time.Duration `mapstructure:"connection_timeout"`
	Database              string        `mapstructure:"database"`
}

// RedisConfig holds Redis connection parameters for the shared resolution
// cache tier.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds producer/consumer parameters for the mention intake and
// canonical-fact output streams.
type KafkaConfig struct {
	Brokers          []string `mapstructure:"brokers"`
	GroupID          string   `mapstructure:"group_id"`
	MentionTopic     string   `mapstructure:"mention_topic"`
	FactTopic        string   `mapstructure:"fact_topic"`
	ReviewTopic      string   `mapstructure:"review_topic"`
	AutoOffsetReset  string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries  int      `mapstructure:"producer_retries"`
	BatchSize        int      `mapstructure:"batch_size"`
	AutoCreateTopics bool     `mapstructure:"auto_create_topics"`

	// ConsumerRetries bounds in-place retries of a failed mention batch
	// before the consumer gives up without committing the offset.
	ConsumerRetries int           `mapstructure:"consumer_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
}

// TermSourceConfig selects where the controlled vocabulary is loaded from.
type TermSourceConfig struct {
	Kind string `mapstructure:"kind"` // "file" | "neo4j"
	Path string `mapstructure:"path"` // JSON-lines term dump, kind=file
}

// ResolverConfig holds the resolution-policy tunables.
type ResolverConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	AmbiguityMargin     float64 `mapstructure:"ambiguity_margin"`
	MaxCandidates       int     `mapstructure:"max_candidates"`
	LexicalFloor        float64 `mapstructure:"lexical_floor"`
	SimilarityMetric    string  `mapstructure:"similarity_metric"` // "blended" | "token_set" | "edit"

	// DomainRoots restricts candidates of a mention category to the subtree
	// below the named term, e.g. source → the plant-clade root.
	DomainRoots map[string]string `mapstructure:"domain_roots"`

	// CategoryThresholds overrides similarity_threshold per mention category.
	CategoryThresholds map[string]float64 `mapstructure:"category_thresholds"`

	CacheEnabled     bool          `mapstructure:"cache_enabled"`
	CacheWaitTimeout time.Duration `mapstructure:"cache_wait_timeout"`
	ConcurrencyLimit int           `mapstructure:"concurrency_limit"`
}

// DedupConfig holds fact-deduplication tunables.
type DedupConfig struct {
	// PredicateAliases collapses near-identical predicates onto one
	// canonical form before clustering.
	PredicateAliases map[string]string `mapstructure:"predicate_aliases"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "text"
	OutputPaths []string `mapstructure:"output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine. Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Neo4j      Neo4jConfig      `mapstructure:"neo4j"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	TermSource TermSourceConfig `mapstructure:"term_source"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	Log        LogConfig        `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config. It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Term source
	switch c.TermSource.Kind {
	case "file":
		if c.TermSource.Path == "" {
			return fmt.Errorf("config: term_source.path is required for kind=file")
		}
	case "neo4j":
		if c.Neo4j.URI == "" {
			return fmt.Errorf("config: neo4j.uri is required for term_source.kind=neo4j")
		}
	default:
		return fmt.Errorf("config: term_source.kind %q is invalid; expected file|neo4j", c.TermSource.Kind)
	}

	// Resolver
	if c.Resolver.SimilarityThreshold <= 0 || c.Resolver.SimilarityThreshold > 1 {
		return fmt.Errorf("config: resolver.similarity_threshold %v is out of range (0, 1]", c.Resolver.SimilarityThreshold)
	}
	if c.Resolver.AmbiguityMargin <= 0 || c.Resolver.AmbiguityMargin >= 1 {
		return fmt.Errorf("config: resolver.ambiguity_margin %v is out of range (0, 1)", c.Resolver.AmbiguityMargin)
	}
	if c.Resolver.MaxCandidates < 1 {
		return fmt.Errorf("config: resolver.max_candidates must be ≥ 1, got %d", c.Resolver.MaxCandidates)
	}
	if c.Resolver.ConcurrencyLimit < 1 {
		return fmt.Errorf("config: resolver.concurrency_limit must be ≥ 1, got %d", c.Resolver.ConcurrencyLimit)
	}
	for cat, threshold := range c.Resolver.CategoryThresholds {
		if threshold <= 0 || threshold > 1 {
			return fmt.Errorf("config: resolver.category_thresholds[%s] %v is out of range (0, 1]", cat, threshold)
		}
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
	}

	// Redis, required only when the shared cache tier is on
	if c.Resolver.CacheEnabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when resolver.cache_enabled is true")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|text", c.Log.Format)
	}

	return nil
}
