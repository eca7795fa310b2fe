package simulation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/jason-s-yu/nomercy/internal/models"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPersister keeps every record it is handed and can be told to fail.
type recordingPersister struct {
	mu      sync.Mutex
	batches []int
	records []*stats.BatchRecord
	err     error
}

func (p *recordingPersister) SaveBatch(_ context.Context, rec *stats.BatchRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, rec.BatchNumber)
	p.records = append(p.records, rec)
	return p.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig(sims, batch, workers int) Config {
	rules := game.DefaultHouseRules()
	rules.MaxTurns = 5000
	return Config{
		Players:     6,
		HandSize:    7,
		Rules:       rules,
		Simulations: sims,
		BatchSize:   batch,
		Workers:     workers,
		Seed:        20240601,
		MaxExamples: 5,
	}
}

func TestRunBatches(t *testing.T) {
	p := &recordingPersister{}
	r := NewRunner(testConfig(25, 10, 3), p, quietLogger())

	last, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, last)

	assert.Equal(t, []int{1, 2, 3}, p.batches)
	assert.EqualValues(t, 10, p.records[0].BatchGames)
	assert.EqualValues(t, 5, last.BatchGames)
	assert.EqualValues(t, 25, last.TotalGames)
	assert.EqualValues(t, 10, p.records[0].TotalGames, "totals are cumulative")
	assert.Equal(t, r.RunID, last.RunID)

	var histogram int64
	for _, n := range last.TurnCounts {
		histogram += n
	}
	assert.EqualValues(t, 25, histogram)
	assert.Equal(t, last.TotalGames, r.Totals().TotalGames)
}

func TestRunIsIndependentOfWorkerCount(t *testing.T) {
	one, err := NewRunner(testConfig(40, 15, 1), nil, quietLogger()).Run(context.Background())
	require.NoError(t, err)
	many, err := NewRunner(testConfig(40, 15, 8), nil, quietLogger()).Run(context.Background())
	require.NoError(t, err)

	one.RunID, many.RunID = uuid.Nil, uuid.Nil
	assert.Equal(t, one, many)
}

func TestPersistFailureDoesNotStopRun(t *testing.T) {
	p := &recordingPersister{err: errors.New("disk full")}
	last, err := NewRunner(testConfig(12, 4, 2), p, quietLogger()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, p.batches)
	assert.EqualValues(t, 12, last.TotalGames)
}

func TestRunStopsBetweenBatchesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &recordingPersister{}
	last, err := NewRunner(testConfig(10, 5, 2), p, quietLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, last)
	assert.Empty(t, p.batches)
}

func TestMultiPersisterTriesEverySink(t *testing.T) {
	a := &recordingPersister{err: errors.New("a down")}
	b := &recordingPersister{}
	c := &recordingPersister{err: errors.New("c down")}

	err := MultiPersister{a, b, c}.SaveBatch(context.Background(), &stats.BatchRecord{BatchNumber: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a down")
	assert.Contains(t, err.Error(), "c down")
	assert.Equal(t, []int{7}, b.batches)

	assert.NoError(t, MultiPersister{b}.SaveBatch(context.Background(), &stats.BatchRecord{BatchNumber: 8}))
}

func TestFilePersisterRoundTrip(t *testing.T) {
	agg := stats.NewAggregate(2)
	agg.RecordGame(3, game.Result{
		WinnerID:   4,
		Turns:      1,
		WinnerHand: []models.Card{models.ActionCard(models.ColorRed, models.ValueDiscardColor), models.NumberCard(models.ColorRed, 2)},
	})
	agg.RecordGame(4, game.Result{WinnerID: 2, Turns: 77, Capped: true})
	agg.CardPlayCounts["Red DiscardColor"] = 1
	rec := agg.Record(uuid.New(), 1, 2)

	p := &FilePersister{Dir: t.TempDir() + "/simulation_data"}
	require.NoError(t, p.SaveBatch(context.Background(), rec))
	require.FileExists(t, p.statsPath(1))
	require.FileExists(t, p.examplesPath(1))

	back, err := p.LoadBatch(1)
	require.NoError(t, err)
	assert.Equal(t, rec, back)

	// a batch without examples writes one file and still reloads
	rec2 := agg.Record(rec.RunID, 2, 0)
	rec2.OneTurnExamples = nil
	require.NoError(t, p.SaveBatch(context.Background(), rec2))
	assert.NoFileExists(t, p.examplesPath(2))
	back2, err := p.LoadBatch(2)
	require.NoError(t, err)
	assert.Equal(t, rec2, back2)

	_, err = p.LoadBatch(99)
	assert.Error(t, err)
}
