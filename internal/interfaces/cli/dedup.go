package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	appdedup "github.com/phytokg/termlink/internal/application/dedup"
	"github.com/phytokg/termlink/internal/domain/fact"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// NewDedupCmd creates the "dedup" command: extracted facts in, canonical
// facts out, with an optional review side file.
func NewDedupCmd(opts *RootOptions) *cobra.Command {
	var inputPath, outputPath, reviewPath string

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Deduplicate a file of extracted facts into canonical facts",
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

			svc := appdedup.NewService(appdedup.Deps{
				Dedup:  fact.NewDeduplicator(cfg.Dedup.PredicateAliases),
				Logger: log,
			})

			in, closeIn, err := openInput(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			var facts []mapping.Fact
			if err := readLines(in, func(line []byte, n int) error {
				var f mapping.Fact
				if err := json.Unmarshal(line, &f); err != nil {
					return errors.Wrap(err, errors.ErrCodeSerialization,
						fmt.Sprintf("malformed fact at line %d", n))
				}
				facts = append(facts, f)
				return nil
			}); err != nil {
				return err
			}

			result, err := svc.DeduplicateBatch(cmd.Context(), appdedup.BatchRequest{Facts: facts})
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(outputPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeOut()

			enc := json.NewEncoder(out)
			for i := range result.Canonical {
				if err := enc.Encode(&result.Canonical[i]); err != nil {
					return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write canonical fact")
				}
			}

			if reviewPath != "" && len(result.Review) > 0 {
				rw, closeReview, err := openOutput(reviewPath, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				defer closeReview()
				renc := json.NewEncoder(rw)
				for i := range result.Review {
					if err := renc.Encode(&result.Review[i]); err != nil {
						return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write review item")
					}
				}
			}

			log.Info("batch deduplicated",
				logging.String("batch_id", result.BatchID),
				logging.Int("facts_in", len(facts)),
				logging.Int("canonical", len(result.Canonical)),
				logging.Int("review", len(result.Review)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "facts file, JSON lines (\"-\" for stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "canonical facts output (\"-\" for stdout)")
	cmd.Flags().StringVar(&reviewPath, "review", "", "review items output file (omitted: not written)")
	return cmd
}
