package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/internal/infrastructure/termsource"
)

// NewIndexCmd creates the "index" command group.
func NewIndexCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Term index operations",
	}
	cmd.AddCommand(newIndexValidateCmd(opts), newIndexStatsCmd(opts))
	return cmd
}

// newIndexValidateCmd builds the full index from the configured term source
// and reports its size. Build failures (duplicate ids, hierarchy cycles,
// dangling parents, malformed records) surface as errors.
func newIndexValidateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the term source and validate it by building the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			idx, err := buildIndex(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "term source %s: ok, %d terms indexed\n",
				cfg.TermSource.Path, idx.Len())
			return nil
		},
	}
}

// newIndexStatsCmd reports per-category term counts and synonym totals for
// the configured term source.
func newIndexStatsCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report term counts per category for the term source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			src, err := termsource.New(cfg, log)
			if err != nil {
				return err
			}
			records, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := ontology.Build(records); err != nil {
				return err
			}

			byCategory := map[string]int{}
			synonyms := 0
			withParents := 0
			for _, r := range records {
				byCategory[r.Category.String()]++
				synonyms += len(r.Synonyms)
				if len(r.ParentIDs) > 0 {
					withParents++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "terms: %d\n", len(records))
			cats := make([]string, 0, len(byCategory))
			for c := range byCategory {
				cats = append(cats, c)
			}
			sort.Strings(cats)
			for _, c := range cats {
				fmt.Fprintf(out, "  %s: %d\n", c, byCategory[c])
			}
			fmt.Fprintf(out, "synonyms: %d\n", synonyms)
			fmt.Fprintf(out, "terms with parents: %d\n", withParents)
			return nil
		},
	}
}
