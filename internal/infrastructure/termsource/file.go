package termsource

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// FileSource reads terms from a JSON-lines dump, one TermRecord per line.
// Blank lines and lines starting with '#' are skipped so dumps can carry
// header comments.
type FileSource struct {
	path   string
	logger logging.Logger
}

// NewFileSource constructs a FileSource for path.
func NewFileSource(path string, log logging.Logger) *FileSource {
	return &FileSource{path: path, logger: log}
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) ([]vocab.TermRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTermSourceFailure, "failed to open term dump")
	}
	defer f.Close()

	var records []vocab.TermRecord
	scanner := bufio.NewScanner(f)
	// Terms with large synonym lists can exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeTermSourceFailure, "term load cancelled")
			}
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var rec vocab.TermRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTermSourceFailure,
				fmt.Sprintf("malformed term record at %s:%d", s.path, line))
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTermSourceFailure, "failed to read term dump")
	}

	s.logger.Info("terms loaded from file",
		logging.String("path", s.path), logging.Int("terms", len(records)))
	return records, nil
}
