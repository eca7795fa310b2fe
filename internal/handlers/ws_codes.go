// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the stats feed.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	SlowConsumerError   = 3004 // Client could not keep up with the feed and was dropped.
)
