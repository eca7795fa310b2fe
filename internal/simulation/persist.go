// internal/simulation/persist.go
package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jason-s-yu/nomercy/internal/stats"
)

// Persister durably stores a batch record. Implementations must not retain rec.
type Persister interface {
	SaveBatch(ctx context.Context, rec *stats.BatchRecord) error
}

// MultiPersister fans a record out to every persister, attempting all of them.
type MultiPersister []Persister

func (m MultiPersister) SaveBatch(ctx context.Context, rec *stats.BatchRecord) error {
	var errs []error
	for _, p := range m {
		if err := p.SaveBatch(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FilePersister writes each batch to Dir as uno_stats_batch_<n>.json, plus
// one_round_examples_batch_<n>.json when the batch captured one-turn games.
type FilePersister struct {
	Dir string
}

func (p *FilePersister) statsPath(batch int) string {
	return filepath.Join(p.Dir, fmt.Sprintf("uno_stats_batch_%d.json", batch))
}

func (p *FilePersister) examplesPath(batch int) string {
	return filepath.Join(p.Dir, fmt.Sprintf("one_round_examples_batch_%d.json", batch))
}

func (p *FilePersister) SaveBatch(_ context.Context, rec *stats.BatchRecord) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	body := *rec
	body.OneTurnExamples = nil
	if err := writeJSON(p.statsPath(rec.BatchNumber), body); err != nil {
		return err
	}

	if len(rec.OneTurnExamples) > 0 {
		if err := writeJSON(p.examplesPath(rec.BatchNumber), rec.OneTurnExamples); err != nil {
			return err
		}
	}
	return nil
}

// LoadBatch reads back a record written by SaveBatch.
func (p *FilePersister) LoadBatch(batch int) (*stats.BatchRecord, error) {
	var rec stats.BatchRecord
	if err := readJSON(p.statsPath(batch), &rec); err != nil {
		return nil, err
	}

	err := readJSON(p.examplesPath(batch), &rec.OneTurnExamples)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return &rec, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}
