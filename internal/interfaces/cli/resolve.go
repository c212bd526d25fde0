package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// maxLineSize bounds a single JSON-lines record.
const maxLineSize = 4 * 1024 * 1024

// NewResolveCmd creates the "resolve" command: mentions in, mappings out,
// one JSON object per line.
func NewResolveCmd(opts *RootOptions) *cobra.Command {
	var inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a file of mentions against the term index",
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
			svc, err := buildResolutionService(idx, cfg, log)
			if err != nil {
				return err
			}

			in, closeIn, err := openInput(inputPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			var mentions []mapping.Mention
			if err := readLines(in, func(line []byte, n int) error {
				var m mapping.Mention
				if err := json.Unmarshal(line, &m); err != nil {
					return errors.Wrap(err, errors.ErrCodeSerialization,
						fmt.Sprintf("malformed mention at line %d", n))
				}
				mentions = append(mentions, m)
				return nil
			}); err != nil {
				return err
			}

			result, err := svc.ResolveBatch(cmd.Context(), appres.BatchRequest{Mentions: mentions})
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(outputPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeOut()

			enc := json.NewEncoder(out)
			for i := range result.Mappings {
				if err := enc.Encode(&result.Mappings[i]); err != nil {
					return errors.Wrap(err, errors.ErrCodeSerialization, "failed to write mapping")
				}
			}

			log.Info("batch resolved",
				logging.String("batch_id", result.BatchID),
				logging.Int("mapped", result.Stats.Mapped),
				logging.Int("unmapped", result.Stats.Unmapped),
				logging.Int("ambiguous", result.Stats.Ambiguous),
				logging.Int("invalid", result.Stats.Invalid))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "mentions file, JSON lines (\"-\" for stdin)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "mappings output (\"-\" for stdout)")
	return cmd
}

// openInput returns the input reader for path, "-" meaning fallback.
func openInput(path string, fallback io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return fallback, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeBadRequest, "cannot open input file")
	}
	return f, func() { _ = f.Close() }, nil
}

// openOutput returns the output writer for path, "-" meaning fallback.
func openOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return fallback, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot create output file")
	}
	return f, func() { _ = f.Close() }, nil
}

// readLines feeds every non-blank line to fn with its 1-based line number.
func readLines(r io.Reader, fn func(line []byte, n int) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line, n); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to read input")
	}
	return nil
}
