// internal/simulation/runner.go
package simulation

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/game"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/sirupsen/logrus"
)

// Config describes a batch simulation run.
type Config struct {
	Players     int
	HandSize    int
	Rules       game.HouseRules
	Simulations int
	BatchSize   int
	Workers     int   // <= 0 uses runtime.NumCPU
	Seed        int64 // 0 seeds from the clock
	MaxExamples int
}

// gameJob is a single game to simulate.
type gameJob struct {
	Number int64
	Seed   int64
}

// Runner plays Config.Simulations independent games in batches. Each batch
// is fanned out to a fixed pool of workers, each worker owns its own
// stats.Aggregate, and the partial aggregates are merged once the batch is done.
type Runner struct {
	RunID uuid.UUID

	cfg       Config
	persister Persister
	logger    *logrus.Logger

	total *stats.Aggregate
	seeds *rand.Rand
}

// NewRunner prepares a run. A nil persister discards batch records.
func NewRunner(cfg Config, persister Persister, logger *logrus.Logger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Simulations
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Runner{
		RunID:     uuid.New(),
		cfg:       cfg,
		persister: persister,
		logger:    logger,
		total:     stats.NewAggregate(cfg.MaxExamples),
		seeds:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Totals returns the run-wide aggregate. Only read it after Run returns.
func (r *Runner) Totals() *stats.Aggregate {
	return r.total
}

// Run plays every batch and returns the record of the last one. The context
// is checked between batches and passed to the persister; a game in progress
// always runs to completion.
func (r *Runner) Run(ctx context.Context) (*stats.BatchRecord, error) {
	r.logger.WithFields(logrus.Fields{
		"run":         r.RunID,
		"simulations": r.cfg.Simulations,
		"batchSize":   r.cfg.BatchSize,
		"workers":     r.cfg.Workers,
		"seed":        r.cfg.Seed,
	}).Info("Starting simulation run")

	var last *stats.BatchRecord
	var played int64
	for batch := 1; played < int64(r.cfg.Simulations); batch++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		n := min(int64(r.cfg.BatchSize), int64(r.cfg.Simulations)-played)
		start := time.Now()
		r.runBatch(played, n)
		played += n

		last = r.total.Record(r.RunID, batch, n)
		last.Simulations = int64(r.cfg.Simulations)
		r.total.ResetBatch()

		r.logger.WithFields(logrus.Fields{
			"batch":    batch,
			"games":    n,
			"played":   played,
			"avgTurns": last.AvgTurns,
			"elapsed":  time.Since(start),
		}).Info("Batch complete")

		r.save(ctx, last)
	}
	return last, nil
}

// save hands the record to the persister. Failures are logged and the run continues.
func (r *Runner) save(ctx context.Context, rec *stats.BatchRecord) {
	if r.persister == nil {
		return
	}
	if err := r.persister.SaveBatch(ctx, rec); err != nil {
		r.logger.WithFields(logrus.Fields{
			"batch": rec.BatchNumber,
			"error": err,
		}).Warn("Failed to persist batch record")
	}
}

// runBatch plays n games numbered after offset and merges the results into the run totals.
func (r *Runner) runBatch(offset, n int64) {
	jobs := make(chan gameJob, r.cfg.Workers*2)
	partials := make([]*stats.Aggregate, r.cfg.Workers)

	var wg sync.WaitGroup
	for w := range partials {
		partials[w] = stats.NewAggregate(r.cfg.MaxExamples)
		wg.Add(1)
		go r.worker(&wg, jobs, partials[w])
	}

	// seeds are drawn in game order so results do not depend on the worker count
	for i := int64(1); i <= n; i++ {
		jobs <- gameJob{Number: offset + i, Seed: r.seeds.Int63()}
	}
	close(jobs)
	wg.Wait()

	for _, p := range partials {
		r.total.Merge(p)
	}
}

// worker plays jobs until the channel closes, folding everything into agg.
func (r *Runner) worker(wg *sync.WaitGroup, jobs <-chan gameJob, agg *stats.Aggregate) {
	defer wg.Done()

	for job := range jobs {
		g := game.NewGame(game.Options{
			Players:     r.cfg.Players,
			HandSize:    r.cfg.HandSize,
			Rules:       r.cfg.Rules,
			Rand:        rand.New(rand.NewSource(job.Seed)),
			BroadcastFn: agg.Observe,
		})
		agg.RecordGame(job.Number, g.Run())
	}
}
