// Package config provides configuration loading, defaults, and validation
// for the termlink resolution engine.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "termlink"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "termlink:"
	DefaultRedisTTL       = 24 * time.Hour

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaGroupID      = "termlink-resolver"
	DefaultKafkaMentionTopic = "termlink.mentions"
	DefaultKafkaFactTopic    = "termlink.facts.canonical"
	DefaultKafkaReviewTopic  = "termlink.facts.review"

	DefaultKafkaConsumerRetries = 5
	DefaultKafkaRetryBackoff    = 500 * time.Millisecond

	DefaultTermSourceKind = "file"
	DefaultTermSourcePath = "ontology/terms.jsonl"

	DefaultSimilarityThreshold = 0.75
	DefaultAmbiguityMargin     = 0.03
	DefaultMaxCandidates       = 50
	DefaultLexicalFloor        = 0.35
	DefaultSimilarityMetric    = "blended"
	DefaultCacheWaitTimeout    = 2 * time.Second
	DefaultConcurrencyLimit    = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins. It must run after
// unmarshalling raw config data and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.MentionTopic == "" {
		cfg.Kafka.MentionTopic = DefaultKafkaMentionTopic
	}
	if cfg.Kafka.FactTopic == "" {
		cfg.Kafka.FactTopic = DefaultKafkaFactTopic
	}
	if cfg.Kafka.ReviewTopic == "" {
		cfg.Kafka.ReviewTopic = DefaultKafkaReviewTopic
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.ConsumerRetries == 0 {
		cfg.Kafka.ConsumerRetries = DefaultKafkaConsumerRetries
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}

	// Term source
	if cfg.TermSource.Kind == "" {
		cfg.TermSource.Kind = DefaultTermSourceKind
	}
	if cfg.TermSource.Kind == "file" && cfg.TermSource.Path == "" {
		cfg.TermSource.Path = DefaultTermSourcePath
	}

	// Resolver
	if cfg.Resolver.SimilarityThreshold == 0 {
		cfg.Resolver.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if cfg.Resolver.AmbiguityMargin == 0 {
		cfg.Resolver.AmbiguityMargin = DefaultAmbiguityMargin
	}
	if cfg.Resolver.MaxCandidates == 0 {
		cfg.Resolver.MaxCandidates = DefaultMaxCandidates
	}
	if cfg.Resolver.LexicalFloor == 0 {
		cfg.Resolver.LexicalFloor = DefaultLexicalFloor
	}
	if cfg.Resolver.SimilarityMetric == "" {
		cfg.Resolver.SimilarityMetric = DefaultSimilarityMetric
	}
	if cfg.Resolver.CacheWaitTimeout == 0 {
		cfg.Resolver.CacheWaitTimeout = DefaultCacheWaitTimeout
	}
	if cfg.Resolver.ConcurrencyLimit == 0 {
		cfg.Resolver.ConcurrencyLimit = DefaultConcurrencyLimit
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
}
