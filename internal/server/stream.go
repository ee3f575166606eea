package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/overlay"
	"github.com/ayusman/kathak/internal/pipeline"
)

// StreamHandler serves the skeleton overlay as MJPEG.
type StreamHandler struct {
	hub      *app.Broadcaster
	renderer *overlay.Renderer
	logger   *slog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *app.Broadcaster, renderer *overlay.Renderer, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, renderer: renderer, logger: logger}
}

// ServeHTTP streams one JPEG part per frame result.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Show the last known state right away.
	if !h.writePart(w, h.hub.Latest()) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			if !h.writePart(w, res) {
				return
			}
		}
	}
}

// writePart reports false once the client is gone.
func (h *StreamHandler) writePart(w http.ResponseWriter, res pipeline.Result) bool {
	jpeg, err := h.renderer.Encode(res)
	if err != nil {
		h.logger.Warn("overlay encode failed", "error", err)
		return true
	}

	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return false
	}
	if _, err := w.Write(jpeg); err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
		return false
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return true
}
