package historian

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanQueue serves payloads from a channel.
type chanQueue struct {
	ch chan []byte
}

func (q *chanQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	select {
	case p := <-q.ch:
		return p, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type memStore struct {
	mu        sync.Mutex
	saved     []*stats.BatchRecord
	calls     int
	abandoned []uuid.UUID
	failSaves int
}

func (s *memStore) SaveBatches(_ context.Context, recs []*stats.BatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failSaves > 0 {
		s.failSaves--
		return errors.New("db down")
	}
	s.saved = append(s.saved, recs...)
	return nil
}

func (s *memStore) MarkAbandoned(_ context.Context, runID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandoned = append(s.abandoned, runID)
	return nil
}

func (s *memStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func payload(t *testing.T, rec stats.BatchRecord) []byte {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return data
}

func TestFlushOnBatchSize(t *testing.T) {
	store := &memStore{}
	hs := NewService(&chanQueue{}, store, Config{BatchSize: 2, FlushDelay: time.Hour}, quietLogger())
	run := uuid.New()

	hs.handle(payload(t, stats.BatchRecord{RunID: run, BatchNumber: 1, Simulations: 10}), time.Now())
	assert.Equal(t, 1, hs.Pending())
	assert.Zero(t, store.savedCount())

	hs.handle(payload(t, stats.BatchRecord{RunID: run, BatchNumber: 2, Simulations: 10}), time.Now())
	assert.Zero(t, hs.Pending())
	assert.Equal(t, 2, store.savedCount())
	assert.Equal(t, 1, store.calls, "a full batch is one store call")
}

func TestInvalidPayloadsAreDropped(t *testing.T) {
	store := &memStore{}
	hs := NewService(&chanQueue{}, store, Config{BatchSize: 1}, quietLogger())

	hs.handle([]byte("{not json"), time.Now())
	hs.handle(payload(t, stats.BatchRecord{BatchNumber: 1}), time.Now())
	assert.Zero(t, hs.Pending())
	assert.Zero(t, store.calls)
}

func TestFailedFlushRetries(t *testing.T) {
	store := &memStore{failSaves: 1}
	hs := NewService(&chanQueue{}, store, Config{BatchSize: 5}, quietLogger())
	hs.handle(payload(t, stats.BatchRecord{RunID: uuid.New(), BatchNumber: 1}), time.Now())

	hs.flush(context.Background())
	assert.Equal(t, 1, hs.Pending())
	hs.flush(context.Background())
	assert.Zero(t, hs.Pending())
	assert.Equal(t, 1, store.savedCount())
}

func TestAbandonIdleRuns(t *testing.T) {
	store := &memStore{}
	hs := NewService(&chanQueue{}, store, Config{BatchSize: 10, Inactivity: time.Minute}, quietLogger())
	start := time.Now()

	idle, active, done := uuid.New(), uuid.New(), uuid.New()
	hs.handle(payload(t, stats.BatchRecord{RunID: idle, BatchNumber: 1, Simulations: 100, TotalGames: 10}), start)
	hs.handle(payload(t, stats.BatchRecord{RunID: active, BatchNumber: 1, Simulations: 100, TotalGames: 10}), start.Add(50*time.Second))
	hs.handle(payload(t, stats.BatchRecord{RunID: done, BatchNumber: 1, Simulations: 10, TotalGames: 10}), start)

	hs.abandonIdle(start.Add(90 * time.Second))
	assert.Equal(t, []uuid.UUID{idle}, store.abandoned)
	assert.Equal(t, 3, store.savedCount(), "pending records are flushed before a run is abandoned")

	// already handled runs are forgotten
	hs.abandonIdle(start.Add(200 * time.Second))
	assert.ElementsMatch(t, []uuid.UUID{idle, active}, store.abandoned)
}

func TestRunDrainsQueueAndFlushesOnStop(t *testing.T) {
	store := &memStore{}
	q := &chanQueue{ch: make(chan []byte, 4)}
	hs := NewService(q, store, Config{
		BatchSize:  100,
		FlushDelay: 20 * time.Millisecond,
		PopTimeout: 10 * time.Millisecond,
	}, quietLogger())

	run := uuid.New()
	for i := 1; i <= 3; i++ {
		q.ch <- payload(t, stats.BatchRecord{RunID: run, BatchNumber: i, Simulations: 30, TotalGames: int64(i * 10)})
	}

	done := make(chan struct{})
	go func() {
		hs.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.savedCount() == 3 }, 2*time.Second, 10*time.Millisecond)
	hs.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("historian did not stop")
	}
	assert.Zero(t, hs.Pending())
}
