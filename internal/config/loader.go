package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "TERMLINK"

// envKeys lists every scalar configuration key so that environment-only
// loading works: viper resolves env overrides only for keys it knows about,
// and with no config file present nothing registers them implicitly.
var envKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout",
	"database.host", "database.port", "database.user", "database.password",
	"database.db_name", "database.ssl_mode", "database.max_conns", "database.min_conns",
	"database.conn_max_lifetime", "database.conn_max_idle_time", "database.migration_path",
	"neo4j.uri", "neo4j.user", "neo4j.password", "neo4j.max_connection_pool_size",
	"neo4j.connection_timeout", "neo4j.database",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.default_ttl", "redis.key_prefix",
	"kafka.brokers", "kafka.group_id", "kafka.mention_topic", "kafka.fact_topic",
	"kafka.review_topic", "kafka.auto_offset_reset", "kafka.producer_retries",
	"kafka.batch_size", "kafka.auto_create_topics",
	"kafka.consumer_retries", "kafka.retry_backoff",
	"term_source.kind", "term_source.path",
	"resolver.similarity_threshold", "resolver.ambiguity_margin",
	"resolver.max_candidates", "resolver.lexical_floor", "resolver.similarity_metric",
	"resolver.cache_enabled", "resolver.cache_wait_timeout", "resolver.concurrency_limit",
	"log.level", "log.format", "log.output_paths",
}

// newViper builds a pre-configured Viper instance with the engine's standard
// settings: YAML file type, TERMLINK_ env prefix, automatic env binding, and
// a key replacer that maps "." to "_" so that nested keys like
// "database.host" resolve to "TERMLINK_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		// BindEnv with no explicit name derives TERMLINK_<KEY> from the
		// replacer above.
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges any TERMLINK_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result. It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from TERMLINK_* environment
// variables, with no config file required. This is the preferred loading
// strategy for containerised deployments.
//
// Environment variable naming convention:
//
//	TERMLINK_<SECTION>_<FIELD>   e.g.  TERMLINK_DATABASE_HOST, TERMLINK_RESOLVER_SIMILARITY_THRESHOLD
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for use in main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
