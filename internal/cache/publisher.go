// internal/cache/publisher.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/redis/go-redis/v9"
)

// SnapshotTTL bounds how long a run's latest snapshot outlives the run.
const SnapshotTTL = 24 * time.Hour

// Publisher pushes batch records onto the historian queue and keeps the
// latest record of each run under a snapshot key.
type Publisher struct {
	Client *redis.Client
	Queue  string
}

// NewPublisher returns a publisher on the global client.
func NewPublisher() *Publisher {
	return &Publisher{Client: Rdb, Queue: QueueName()}
}

// SnapshotKey is the key holding the latest record of runID.
func SnapshotKey(runID uuid.UUID) string {
	return "nomercy:latest:" + runID.String()
}

// SaveBatch serializes rec and pushes it in one pipeline.
func (p *Publisher) SaveBatch(ctx context.Context, rec *stats.BatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal batch record: %w", err)
	}

	_, err = p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, p.Queue, data)
		pipe.Set(ctx, SnapshotKey(rec.RunID), data, SnapshotTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish batch %d to '%s': %w", rec.BatchNumber, p.Queue, err)
	}
	return nil
}

// Latest returns the stored snapshot for runID, or nil if there is none.
func (p *Publisher) Latest(ctx context.Context, runID uuid.UUID) (*stats.BatchRecord, error) {
	data, err := p.Client.Get(ctx, SnapshotKey(runID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec stats.BatchRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &rec, nil
}
