package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/kathak/internal/voice"
)

// StatusHandler serves GET /api/status.
type StatusHandler struct {
	ctl Controller
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(ctl Controller) *StatusHandler {
	return &StatusHandler{ctl: ctl}
}

// ServeHTTP writes the controller status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.Status())
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandsResponse struct {
	Commands []voice.Command `json:"commands"`
}

// CommandHandler serves /api/commands. POST submits a token through the
// activation gate exactly as a certain voice recognition would.
type CommandHandler struct {
	ctl Controller
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(ctl Controller) *CommandHandler {
	return &CommandHandler{ctl: ctl}
}

// ServeHTTP lists or submits commands.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, commandsResponse{Commands: voice.Commands})
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CommandHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeError(w, http.StatusBadRequest, "Command is required")
		return
	}

	res := h.ctl.Command(r.Context(), req.Command)
	if !res.Accepted {
		writeError(w, http.StatusUnprocessableEntity, "Unknown command")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
