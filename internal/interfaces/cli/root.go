// Package cli implements the termlink command-line interface: offline index
// validation, mention resolution and fact deduplication over JSON-lines
// files.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/internal/config"
	"github.com/phytokg/termlink/internal/domain/ontology"
	resdomain "github.com/phytokg/termlink/internal/domain/resolution"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/internal/infrastructure/termsource"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	TermsPath  string
}

// NewRootCommand creates the root cobra command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "termlink",
		Short: "Entity resolution and fact deduplication for literature mining",
		Long: "termlink links free-text entity mentions from mined literature to a\n" +
			"controlled vocabulary and collapses duplicate extracted facts into\n" +
			"canonical, provenance-tracked assertions.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: env only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.TermsPath, "terms", "", "term dump path override (JSON lines)")

	cmd.AddCommand(
		NewIndexCmd(opts),
		NewResolveCmd(opts),
		NewDedupCmd(opts),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves the effective configuration for a CLI run, applying
// the global flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.ConfigPath != "" {
		cfg, err = config.Load(o.ConfigPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.TermsPath != "" {
		cfg.TermSource.Kind = "file"
		cfg.TermSource.Path = o.TermsPath
	}
	return cfg, nil
}

// newLogger builds the CLI logger. CLI output goes to stdout, so logs go to
// stderr in console format.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	log, err := logging.NewLogger(logging.Config{
		Level:       cfg.Log.Level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)
	return log, nil
}

// buildIndex loads the configured term source and builds the in-memory index.
func buildIndex(ctx context.Context, cfg *config.Config, log logging.Logger) (*ontology.Index, error) {
	src, err := termsource.New(cfg, log)
	if err != nil {
		return nil, err
	}
	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ontology.Build(records)
}

// buildResolutionService wires the resolution pipeline from configuration,
// without persistence or caching: CLI runs are one-shot.
func buildResolutionService(idx *ontology.Index, cfg *config.Config, log logging.Logger) (appres.Service, error) {
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
	filter := resdomain.NewFilter(idx, roots)

	thresholds := make(map[vocab.TermCategory]float64, len(cfg.Resolver.CategoryThresholds))
	for cat, v := range cfg.Resolver.CategoryThresholds {
		thresholds[vocab.TermCategory(cat)] = v
	}
	resolver := resdomain.NewResolver(resdomain.Policy{
		SimilarityThreshold: cfg.Resolver.SimilarityThreshold,
		AmbiguityMargin:     cfg.Resolver.AmbiguityMargin,
		CategoryThresholds:  thresholds,
	})

	return appres.NewService(appres.Deps{
		Generator:   gen,
		Filter:      filter,
		Resolver:    resolver,
		Concurrency: cfg.Resolver.ConcurrencyLimit,
		Logger:      log,
	}), nil
}
