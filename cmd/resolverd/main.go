// Daemon entry point for the termlink resolution engine: term index, kafka
// mention intake, and the HTTP API in one process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appdedup "github.com/phytokg/termlink/internal/application/dedup"
	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/internal/config"
	"github.com/phytokg/termlink/internal/domain/fact"
	"github.com/phytokg/termlink/internal/domain/ontology"
	resdomain "github.com/phytokg/termlink/internal/domain/resolution"
	"github.com/phytokg/termlink/internal/infrastructure/cache"
	"github.com/phytokg/termlink/internal/infrastructure/database/postgres"
	"github.com/phytokg/termlink/internal/infrastructure/database/postgres/repositories"
	"github.com/phytokg/termlink/internal/infrastructure/messaging/kafka"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/metrics"
	"github.com/phytokg/termlink/internal/infrastructure/termsource"
	httpserver "github.com/phytokg/termlink/internal/interfaces/http"
	"github.com/phytokg/termlink/internal/interfaces/http/handlers"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolverd: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolverd: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(log)
	log.Info("starting termlink resolver",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	// Term index, built once at startup.
	src, err := termsource.New(cfg, log)
	if err != nil {
		log.Fatal("term source init failed", logging.Err(err))
	}
	records, err := src.Load(ctx)
	if err != nil {
		log.Fatal("term source load failed", logging.Err(err))
	}
	idx, err := ontology.Build(records)
	if err != nil {
		log.Fatal("term index build failed", logging.Err(err))
	}
	log.Info("term index built", logging.Int("terms", idx.Len()))

	// Postgres.
	conn, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("postgres connection failed", logging.Err(err))
	}
	defer conn.Close()

	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.DSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			log.Fatal("migrations failed", logging.Err(err))
		}
	}
	mappingRepo := repositories.NewMappingRepository(conn.Pool, log)
	factRepo := repositories.NewCanonicalFactRepository(conn.Pool, log)

	// Resolution cache, with the shared redis tier when enabled.
	cacheOpts := []cache.Option{cache.WithWaitTimeout(cfg.Resolver.CacheWaitTimeout)}
	var redisStore *cache.RedisStore
	if cfg.Resolver.CacheEnabled {
		redisStore, err = cache.NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("redis connection failed", logging.Err(err))
		}
		defer func() { _ = redisStore.Close() }()
		cacheOpts = append(cacheOpts, cache.WithStore(redisStore))
	}
	resCache := cache.NewResolutionCache(log, cacheOpts...)

	// Application services.
	resolutionSvc, err := buildResolutionService(idx, cfg, resCache, mappingRepo, log, m)
	if err != nil {
		log.Fatal("resolution service init failed", logging.Err(err))
	}

	publisher := kafka.NewPublisher(cfg.Kafka, log)
	defer func() { _ = publisher.Close() }()

	dedupSvc := appdedup.NewService(appdedup.Deps{
		Dedup:     fact.NewDeduplicator(cfg.Dedup.PredicateAliases),
		Repo:      factRepo,
		Publisher: publisher,
		Logger:    log,
		Metrics:   m,
	})

	// Kafka mention intake.
	consumer := kafka.NewMentionConsumer(cfg.Kafka, resolutionSvc, log)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Error("mention consumer stopped", logging.Err(err))
		}
	}()

	// HTTP API.
	router := httpserver.NewRouter(httpserver.RouterDeps{
		Resolution: resolutionSvc,
		Dedup:      dedupSvc,
		Index:      idx,
		Logger:     log,
		Metrics:    m,
		Version:    version,
		Mode:       cfg.Server.Mode,
		Checkers: []handlers.HealthChecker{
			handlers.HealthCheckFunc{ComponentName: "postgres", CheckFunc: conn.Ping},
		},
	})
	srv := httpserver.NewServer(cfg.Server, router, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server stopped", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()
	if err := consumer.Close(); err != nil {
		log.Error("consumer close failed", logging.Err(err))
	}
	if err := srv.Stop(context.Background()); err != nil {
		log.Error("http shutdown failed", logging.Err(err))
	}
	log.Info("stopped")
}

// loadConfig loads from the file when given, from TERMLINK_* environment
// variables otherwise.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

// newLogger maps the config log format onto the zap encodings.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	format := "json"
	if cfg.Log.Format == "text" {
		format = "console"
	}
	return logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      format,
		OutputPaths: cfg.Log.OutputPaths,
	})
}

// buildResolutionService wires the resolution pipeline from configuration.
func buildResolutionService(
	idx *ontology.Index,
	cfg *config.Config,
	resCache *cache.ResolutionCache,
	repo appres.MappingRepository,
	log logging.Logger,
	m *metrics.Metrics,
) (appres.Service, error) {
	calc, err := resdomain.NewCalculator(resdomain.Metric(cfg.Resolver.SimilarityMetric))
	if err != nil {
		return nil, err
	}
	gen := resdomain.NewGenerator(idx, resdomain.GeneratorOptions{
		MaxCandidates: cfg.Resolver.MaxCandidates,
		LexicalFloor:  cfg.Resolver.LexicalFloor,
		Calculator:    calc,
	})

	roots := make(map[vocab.TermCategory]vocab.TermID, len(cfg.Resolver.DomainRoots))
	for cat, id := range cfg.Resolver.DomainRoots {
		roots[vocab.TermCategory(cat)] = vocab.TermID(id)
	}
	thresholds := make(map[vocab.TermCategory]float64, len(cfg.Resolver.CategoryThresholds))
	for cat, v := range cfg.Resolver.CategoryThresholds {
		thresholds[vocab.TermCategory(cat)] = v
	}

	return appres.NewService(appres.Deps{
		Generator: gen,
		Filter:    resdomain.NewFilter(idx, roots),
		Resolver: resdomain.NewResolver(resdomain.Policy{
			SimilarityThreshold: cfg.Resolver.SimilarityThreshold,
			AmbiguityMargin:     cfg.Resolver.AmbiguityMargin,
			CategoryThresholds:  thresholds,
		}),
		Cache:       resCache,
		Repo:        repo,
		Concurrency: cfg.Resolver.ConcurrencyLimit,
		Logger:      log,
		Metrics:     m,
	}), nil
}
