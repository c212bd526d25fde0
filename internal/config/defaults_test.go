package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phytokg/termlink/internal/config"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, config.DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, config.DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, []string{config.DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, config.DefaultKafkaConsumerRetries, cfg.Kafka.ConsumerRetries)
	assert.Equal(t, config.DefaultKafkaRetryBackoff, cfg.Kafka.RetryBackoff)
	assert.Equal(t, config.DefaultTermSourceKind, cfg.TermSource.Kind)
	assert.Equal(t, config.DefaultTermSourcePath, cfg.TermSource.Path)
	assert.Equal(t, config.DefaultSimilarityThreshold, cfg.Resolver.SimilarityThreshold)
	assert.Equal(t, config.DefaultAmbiguityMargin, cfg.Resolver.AmbiguityMargin)
	assert.Equal(t, config.DefaultMaxCandidates, cfg.Resolver.MaxCandidates)
	assert.Equal(t, config.DefaultConcurrencyLimit, cfg.Resolver.ConcurrencyLimit)
	assert.Equal(t, config.DefaultCacheWaitTimeout, cfg.Resolver.CacheWaitTimeout)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Server.Port = 9999
	cfg.Resolver.SimilarityThreshold = 0.9
	cfg.Resolver.ConcurrencyLimit = 32
	cfg.Redis.DefaultTTL = time.Minute

	config.ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Resolver.SimilarityThreshold)
	assert.Equal(t, 32, cfg.Resolver.ConcurrencyLimit)
	assert.Equal(t, time.Minute, cfg.Redis.DefaultTTL)
}

func TestApplyDefaults_NilConfig(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}
