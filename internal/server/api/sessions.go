package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/kathak/internal/store"
)

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

type driverEventsResponse struct {
	Events []*store.DriverEvent `json:"events"`
}

type voiceCommandsResponse struct {
	Commands []*store.VoiceCommand `json:"commands"`
}

// SessionsHandler serves the read-only session journal:
// /api/sessions, /api/sessions/{id}, /api/sessions/{id}/drivers and
// /api/sessions/{id}/commands.
type SessionsHandler struct {
	store *store.Store
}

// NewSessionsHandler creates a SessionsHandler.
func NewSessionsHandler(s *store.Store) *SessionsHandler {
	return &SessionsHandler{store: s}
}

// ServeHTTP routes journal requests.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions"), "/")
	if path == "" {
		h.list(w)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	switch sub {
	case "":
		h.get(w, id)
	case "drivers":
		h.drivers(w, id)
	case "commands":
		h.commands(w, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SessionsHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

func (h *SessionsHandler) get(w http.ResponseWriter, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionsHandler) drivers(w http.ResponseWriter, id string) {
	events, err := h.store.DriverEvents().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list driver events")
		return
	}
	if events == nil {
		events = []*store.DriverEvent{}
	}
	writeJSON(w, http.StatusOK, driverEventsResponse{Events: events})
}

func (h *SessionsHandler) commands(w http.ResponseWriter, id string) {
	commands, err := h.store.VoiceCommands().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list voice commands")
		return
	}
	if commands == nil {
		commands = []*store.VoiceCommand{}
	}
	writeJSON(w, http.StatusOK, voiceCommandsResponse{Commands: commands})
}
