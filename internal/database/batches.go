// internal/database/batches.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/nomercy/internal/stats"
)

// ErrNotFound is returned when a requested batch record does not exist.
var ErrNotFound = errors.New("batch record not found")

// BatchStore persists batch records in PostgreSQL.
type BatchStore struct {
	Pool *pgxpool.Pool
}

// NewBatchStore wraps pool, falling back to the shared DB pool.
func NewBatchStore(pool *pgxpool.Pool) *BatchStore {
	if pool == nil {
		pool = DB
	}
	return &BatchStore{Pool: pool}
}

// SaveBatch upserts a single record.
func (s *BatchStore) SaveBatch(ctx context.Context, rec *stats.BatchRecord) error {
	return s.SaveBatches(ctx, []*stats.BatchRecord{rec})
}

// SaveBatches upserts every record in one transaction.
func (s *BatchStore) SaveBatches(ctx context.Context, recs []*stats.BatchRecord) error {
	if s.Pool == nil {
		return errors.New("database not connected")
	}
	err := beginTxFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if err := upsertBatchTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("batch %d of run %s: %w", rec.BatchNumber, rec.RunID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert batches: %w", err)
	}
	return nil
}

// upsertBatchTx writes rec and keeps its run row current. A run becomes
// completed once a record reports every planned game played.
func upsertBatchTx(ctx context.Context, tx pgx.Tx, rec *stats.BatchRecord) error {
	upsertRunQ := `
		INSERT INTO simulation_runs (id, status, simulations)
		VALUES ($1, 'in_progress', $2)
		ON CONFLICT (id)
		DO UPDATE SET simulations = GREATEST(simulation_runs.simulations, EXCLUDED.simulations)
	`
	if _, err := tx.Exec(ctx, upsertRunQ, rec.RunID, rec.Simulations); err != nil {
		return err
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	batchQ := `
		INSERT INTO simulation_batches (
			run_id, batch_number, batch_games, total_games, total_turns, avg_turns, record
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, batch_number)
		DO UPDATE SET batch_games = $3, total_games = $4, total_turns = $5, avg_turns = $6, record = $7
	`
	_, err = tx.Exec(ctx, batchQ,
		rec.RunID, rec.BatchNumber, rec.BatchGames, rec.TotalGames, rec.TotalTurns, rec.AvgTurns, payload,
	)
	if err != nil {
		return err
	}

	if rec.Complete() {
		finalizeQ := `
			UPDATE simulation_runs
			SET status = 'completed', end_time = NOW()
			WHERE id = $1 AND status <> 'completed'
		`
		if _, err := tx.Exec(ctx, finalizeQ, rec.RunID); err != nil {
			return err
		}
	}
	return nil
}

// MarkAbandoned flags a run that stopped reporting before it completed.
func (s *BatchStore) MarkAbandoned(ctx context.Context, runID uuid.UUID) error {
	return beginTxFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		q := `
			UPDATE simulation_runs
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, err := tx.Exec(ctx, q, runID)
		return err
	})
}

// LoadBatch reads back one record.
func (s *BatchStore) LoadBatch(ctx context.Context, runID uuid.UUID, batch int) (*stats.BatchRecord, error) {
	q := `SELECT record FROM simulation_batches WHERE run_id = $1 AND batch_number = $2`
	return s.scanRecord(s.Pool.QueryRow(ctx, q, runID, batch))
}

// LatestBatch returns the most recently written record of any run.
func (s *BatchStore) LatestBatch(ctx context.Context) (*stats.BatchRecord, error) {
	q := `SELECT record FROM simulation_batches ORDER BY created_at DESC, batch_number DESC LIMIT 1`
	return s.scanRecord(s.Pool.QueryRow(ctx, q))
}

// RunStatus returns the lifecycle state of a run.
func (s *BatchStore) RunStatus(ctx context.Context, runID uuid.UUID) (string, error) {
	var status string
	err := s.Pool.QueryRow(ctx, `SELECT status FROM simulation_runs WHERE id = $1`, runID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return status, err
}

func (s *BatchStore) scanRecord(row pgx.Row) (*stats.BatchRecord, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var rec stats.BatchRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decoding batch record: %w", err)
	}
	return &rec, nil
}
