// internal/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list the simulator pushes batch records onto.
var DefaultQueueName = "nomercy_batches"

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// QueueName returns the configured batch queue, HISTORIAN_QUEUE_NAME or the default.
func QueueName() string {
	return getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName)
}

// Queue reads raw payloads off a Redis list.
type Queue struct {
	Client *redis.Client
	Name   string
}

// NewQueue returns a queue on the global client.
func NewQueue() *Queue {
	return &Queue{Client: Rdb, Name: QueueName()}
}

// Pop blocks up to timeout for the next payload. A nil payload with a nil
// error means the wait timed out with the queue empty.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.Client.BLPop(ctx, timeout, q.Name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BLPop returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}
	return []byte(res[1]), nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
