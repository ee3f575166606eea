package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ayusman/kathak/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// BodiesHandler streams every frame result as JSON over a WebSocket.
type BodiesHandler struct {
	hub    *app.Broadcaster
	logger *slog.Logger
}

// NewBodiesHandler creates a new BodiesHandler.
func NewBodiesHandler(hub *app.Broadcaster, logger *slog.Logger) *BodiesHandler {
	return &BodiesHandler{hub: hub, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *BodiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	results, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// The reader only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case res, ok := <-results:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session ended"))
				return
			}
			if err := conn.WriteJSON(res); err != nil {
				return
			}
		}
	}
}
