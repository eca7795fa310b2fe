// cmd/historian/main.go drains published batch records from Redis into Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/nomercy/internal/cache"
	"github.com/jason-s-yu/nomercy/internal/database"
	"github.com/jason-s-yu/nomercy/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	if err := cache.ConnectRedis(); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer cache.Rdb.Close()

	connStr := database.ConnString()
	if connStr == "" {
		logger.Fatal("PG_HOST is not set")
	}
	if err := database.ConnectDB(context.Background(), connStr); err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer database.Close()

	hs := historian.NewService(cache.NewQueue(), database.NewBatchStore(nil), historian.ConfigFromEnv(), logger)
	done := make(chan struct{})
	go func() {
		hs.Run()
		close(done)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	hs.Stop()
	<-done
	logger.Info("Historian shutdown complete.")
}
