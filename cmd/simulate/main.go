// cmd/simulate/main.go runs batches of computer-only games and records statistics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/nomercy/internal/cache"
	"github.com/jason-s-yu/nomercy/internal/config"
	"github.com/jason-s-yu/nomercy/internal/console"
	"github.com/jason-s-yu/nomercy/internal/database"
	"github.com/jason-s-yu/nomercy/internal/handlers"
	"github.com/jason-s-yu/nomercy/internal/simulation"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	cfg, err := config.Parse(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := simulation.MultiPersister{&simulation.FilePersister{Dir: cfg.DataDir}}

	if connStr := database.ConnString(); connStr != "" {
		if err := database.ConnectDB(ctx, connStr); err != nil {
			logger.WithError(err).Warn("Postgres unavailable, batch records will not be stored there")
		} else {
			defer database.Close()
			sinks = append(sinks, database.NewBatchStore(nil))
			logger.Info("Recording batches to Postgres")
		}
	}

	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.WithError(err).Warn("Redis unavailable, batch records will not be published")
		} else {
			defer cache.Rdb.Close()
			sinks = append(sinks, cache.NewPublisher())
			logger.WithField("queue", cache.QueueName()).Info("Publishing batches to Redis")
		}
	}

	var srv *http.Server
	if cfg.Listen != "" {
		hub := handlers.NewHub(logger)
		sinks = append(sinks, hub)
		srv = &http.Server{Addr: cfg.Listen, Handler: handlers.NewMux(logger, hub)}
		go func() {
			logger.Infof("Serving live stats on %s", cfg.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("stats server exited")
			}
		}()
	}

	runner := simulation.NewRunner(simulation.Config{
		Players:     cfg.Players,
		HandSize:    cfg.HandSize,
		Rules:       cfg.Rules,
		Simulations: cfg.Simulations,
		BatchSize:   cfg.BatchSize,
		Workers:     cfg.Workers,
		Seed:        cfg.Seed,
		MaxExamples: cfg.MaxExamples,
	}, sinks, logger)

	start := time.Now()
	last, err := runner.Run(ctx)
	if err != nil {
		logger.WithFields(logrus.Fields{"run": runner.RunID, "error": err}).Warn("Simulation interrupted")
	}
	if last != nil {
		console.NewReporter(os.Stdout).RenderSummary(last, time.Since(start))
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
}
