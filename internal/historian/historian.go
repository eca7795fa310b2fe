// internal/historian/historian.go is an asynchronous historian that pops batch
// records from a queue and persists them in batches, marking runs abandoned
// once they stop reporting.
package historian

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/sirupsen/logrus"
)

// Queue yields raw payloads. Pop returns nil, nil when timeout elapses with nothing queued.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
}

// Store persists records and run lifecycle changes.
type Store interface {
	SaveBatches(ctx context.Context, recs []*stats.BatchRecord) error
	MarkAbandoned(ctx context.Context, runID uuid.UUID) error
}

// Config tunes batching and inactivity detection.
type Config struct {
	BatchSize     int
	FlushDelay    time.Duration
	Inactivity    time.Duration // silence after which an unfinished run is abandoned
	CheckInterval time.Duration
	PopTimeout    time.Duration
}

// ConfigFromEnv reads HISTORIAN_BATCH_SIZE, HISTORIAN_FLUSH_MS and
// RUN_INACTIVITY_TIMEOUT_SEC, falling back to defaults.
func ConfigFromEnv() Config {
	return Config{
		BatchSize:     getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay:    time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		Inactivity:    time.Duration(getEnvInt("RUN_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
		CheckInterval: time.Minute,
		PopTimeout:    3 * time.Second,
	}
}

// Service moves records from a Queue into a Store.
type Service struct {
	queue  Queue
	store  Store
	cfg    Config
	logger *logrus.Logger

	lastActivity sync.Map // map[uuid.UUID]time.Time

	batchMu sync.Mutex
	batch   []*stats.BatchRecord

	ctx      context.Context
	cancelFn context.CancelFunc
	wg       sync.WaitGroup
}

// NewService wires a historian. Zero config fields take their defaults.
func NewService(queue Queue, store Store, cfg Config, logger *logrus.Logger) *Service {
	def := ConfigFromEnv()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushDelay <= 0 {
		cfg.FlushDelay = def.FlushDelay
	}
	if cfg.Inactivity <= 0 {
		cfg.Inactivity = def.Inactivity
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = def.CheckInterval
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = def.PopTimeout
	}
	if logger == nil {
		logger = logrus.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		queue:    queue,
		store:    store,
		cfg:      cfg,
		logger:   logger,
		batch:    make([]*stats.BatchRecord, 0, cfg.BatchSize),
		ctx:      ctx,
		cancelFn: cancel,
	}
}

// Run starts the read and inactivity loops and blocks until Stop is called.
// Anything still batched is flushed before Run returns.
func (hs *Service) Run() {
	hs.wg.Add(2)
	go hs.readLoop()
	go hs.inactivityLoop()

	hs.logger.Info("nomercy historian started")
	<-hs.ctx.Done()
	hs.wg.Wait()
	hs.flush(context.Background())
	hs.logger.Info("nomercy historian stopped")
}

// Stop signals Run to return.
func (hs *Service) Stop() {
	hs.cancelFn()
}

func (hs *Service) readLoop() {
	defer hs.wg.Done()
	ticker := time.NewTicker(hs.cfg.FlushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return

		case <-ticker.C:
			hs.flush(hs.ctx)

		default:
			payload, err := hs.queue.Pop(hs.ctx, hs.cfg.PopTimeout)
			if err != nil {
				if hs.ctx.Err() != nil {
					return
				}
				hs.logger.WithError(err).Error("queue pop failed")
				continue
			}
			if payload == nil {
				continue
			}
			hs.handle(payload, time.Now())
		}
	}
}

// handle decodes one payload and batches it. Malformed payloads are dropped.
func (hs *Service) handle(payload []byte, now time.Time) {
	var rec stats.BatchRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		hs.logger.WithError(err).Warn("invalid batch record")
		return
	}
	if rec.RunID == uuid.Nil {
		hs.logger.Warn("batch record without run id")
		return
	}

	if rec.Complete() {
		hs.lastActivity.Delete(rec.RunID)
	} else {
		hs.lastActivity.Store(rec.RunID, now)
	}
	hs.append(&rec)
}

// append adds a record and flushes once the batch is full.
func (hs *Service) append(rec *stats.BatchRecord) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()

	hs.batch = append(hs.batch, rec)
	if len(hs.batch) >= hs.cfg.BatchSize {
		hs.flushLocked(hs.ctx)
	}
}

// flush writes every pending record in one store call.
func (hs *Service) flush(ctx context.Context) {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	hs.flushLocked(ctx)
}

func (hs *Service) flushLocked(ctx context.Context) {
	if len(hs.batch) == 0 {
		return
	}
	pending := make([]*stats.BatchRecord, len(hs.batch))
	copy(pending, hs.batch)

	if err := hs.store.SaveBatches(ctx, pending); err != nil {
		// keep the records so the next flush retries them
		hs.logger.WithError(err).WithField("records", len(pending)).Error("flush failed")
		return
	}
	hs.batch = hs.batch[:0]
	hs.logger.WithField("records", len(pending)).Debug("flushed batch records")
}

// Pending reports how many records wait for the next flush.
func (hs *Service) Pending() int {
	hs.batchMu.Lock()
	defer hs.batchMu.Unlock()
	return len(hs.batch)
}

func (hs *Service) inactivityLoop() {
	defer hs.wg.Done()
	ticker := time.NewTicker(hs.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-hs.ctx.Done():
			return
		case now := <-ticker.C:
			hs.abandonIdle(now)
		}
	}
}

// abandonIdle marks every run silent for longer than the inactivity window.
func (hs *Service) abandonIdle(now time.Time) {
	hs.lastActivity.Range(func(key, val interface{}) bool {
		runID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.cfg.Inactivity {
			return true
		}

		// earlier records of the run must exist before its status changes
		hs.flush(hs.ctx)
		if err := hs.store.MarkAbandoned(hs.ctx, runID); err != nil {
			hs.logger.WithError(err).WithField("run", runID).Error("failed to mark run abandoned")
			return true
		}
		hs.lastActivity.Delete(runID)
		hs.logger.WithField("run", runID).Info("marked run abandoned due to inactivity")
		return true
	})
}

func getEnvInt(key string, defVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defVal
	}
	return i
}
