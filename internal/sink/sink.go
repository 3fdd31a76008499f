package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/partdev/pcpart-scraper/internal/catalog"
)

// Store persists a finished category snapshot somewhere downstream of
// the JSON artifact (e.g. Postgres). Store failures are logged, not
// propagated: the on-disk artifact is the system of record.
type Store interface {
	SaveSnapshot(ctx context.Context, cat catalog.Category, records []catalog.Record, complete bool) error
}

// Sink accumulates one job's records in batch order and turns them into
// exactly one durable artifact per category. The partial-write policy
// is the resilience contract: an aborted job with any accumulated
// records still produces an artifact, marked incomplete.
type Sink struct {
	dir     string
	cat     catalog.Category
	records []catalog.Record
	stores  []Store
	logger  *slog.Logger
}

func New(dir string, cat catalog.Category, logger *slog.Logger, stores ...Store) *Sink {
	return &Sink{
		dir:    dir,
		cat:    cat,
		stores: stores,
		logger: logger.With("component", "sink", "category", cat.String()),
	}
}

// Append accumulates a page batch. Batches arrive in ascending page
// order and their records keep that order in the artifact.
func (s *Sink) Append(batch *catalog.PageBatch) {
	s.records = append(s.records, batch.Records...)
}

// Len reports how many records have been accumulated so far.
func (s *Sink) Len() int {
	return len(s.records)
}

// Complete writes the category artifact after normal stream exhaustion.
func (s *Sink) Complete(ctx context.Context) error {
	return s.flush(ctx, true)
}

// Abort applies the partial-write policy after an unrecoverable
// extraction failure: with zero accumulated records nothing is written;
// otherwise the records are salvaged under an incomplete-marked name.
// The returned bool reports whether an artifact was written.
func (s *Sink) Abort(ctx context.Context) (bool, error) {
	if len(s.records) == 0 {
		s.logger.Info("aborted with no records, writing nothing")
		return false, nil
	}
	s.logger.Warn("aborted mid-stream, salvaging partial output", "records", len(s.records))
	if err := s.flush(ctx, false); err != nil {
		return false, err
	}
	return true, nil
}

// Filename returns the artifact name the sink writes for the given
// terminal state.
func (s *Sink) Filename(complete bool) string {
	if complete {
		return s.cat.String() + ".json"
	}
	return s.cat.String() + ".incomplete.json"
}

func (s *Sink) flush(ctx context.Context, complete bool) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Marshal an empty array, not null, for record-less categories.
	records := s.records
	if records == nil {
		records = []catalog.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	path := filepath.Join(s.dir, s.Filename(complete))

	// Write to temp file first for atomicity.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}

	s.logger.Info("wrote artifact", "path", path, "records", len(records), "complete", complete)

	for _, store := range s.stores {
		if err := store.SaveSnapshot(ctx, s.cat, records, complete); err != nil {
			s.logger.Error("downstream store failed", "error", err)
		}
	}

	return nil
}
