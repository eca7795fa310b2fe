// internal/handlers/hub.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/nomercy/internal/stats"
	"github.com/sirupsen/logrus"
)

// writeTimeout bounds a single feed write to one client.
const writeTimeout = 3 * time.Second

// Hub keeps the latest batch record of the running simulation and pushes
// every new record to connected websocket clients. It satisfies the
// simulation persister interface so the runner can feed it directly.
type Hub struct {
	logger *logrus.Logger

	mu      sync.Mutex
	latest  []byte
	clients map[*websocket.Conn]struct{}
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// SaveBatch stores rec as the latest record and broadcasts it. Clients whose
// write fails are dropped; that never fails the save.
func (h *Hub) SaveBatch(ctx context.Context, rec *stats.BatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal batch record: %w", err)
	}

	h.mu.Lock()
	h.latest = data
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := h.write(ctx, c, data); err != nil {
			h.logger.Warnf("Dropping stats client after failed write: %v", err)
			h.unregister(c)
			c.Close(SlowConsumerError, "write failed")
		}
	}
	return nil
}

// Latest returns the encoded latest record, or nil before the first batch.
func (h *Hub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Clients reports the number of connected feed clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// register adds c and returns the record it should be greeted with.
func (h *Hub) register(c *websocket.Conn) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return h.latest
}

func (h *Hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) write(ctx context.Context, c *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, data)
}
