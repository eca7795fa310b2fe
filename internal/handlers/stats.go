// internal/handlers/stats.go
package handlers

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/nomercy/internal/middleware"
	"github.com/sirupsen/logrus"
)

// NewMux routes the stats endpoints, each wrapped in request logging.
func NewMux(logger *logrus.Logger, hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("/healthz", logged(http.HandlerFunc(HealthHandler)))
	mux.Handle("/stats/latest", logged(http.HandlerFunc(LatestStatsHandler(hub))))
	mux.Handle("/stats/ws", logged(http.HandlerFunc(StatsWSHandler(logger, hub))))
	return mux
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// LatestStatsHandler serves the most recent batch record as JSON.
func LatestStatsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		data := hub.Latest()
		if data == nil {
			http.Error(w, "no batch completed yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// StatsWSHandler upgrades to a websocket on the "stats" subprotocol and
// streams every batch record until the client goes away. The latest record,
// if any, is sent on connect.
func StatsWSHandler(logger *logrus.Logger, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"stats"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "stats" {
			c.Close(BadSubprotocolError, "Client must use the 'stats' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		greeting := hub.register(c)
		defer hub.unregister(c)

		if greeting != nil {
			if err := hub.write(r.Context(), c, greeting); err != nil {
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
				return
			}
		}

		// the feed is one-way; CloseRead discards client frames and ends ctx on close
		ctx := c.CloseRead(r.Context())
		<-ctx.Done()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
		c.Close(websocket.StatusNormalClosure, "")
	}
}
