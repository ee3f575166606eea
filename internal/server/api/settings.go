package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/kathak/internal/store"
)

// gainKeys are the settings that must hold positive numbers.
var gainKeys = map[string]bool{
	store.SettingCursorGain: true,
	store.SettingScrollGain: true,
}

type settingRequest struct {
	Value string `json:"value"`
}

type listSettingsResponse struct {
	Settings []store.Setting `json:"settings"`
}

// SettingsHandler serves /api/settings and /api/settings/{key}.
type SettingsHandler struct {
	store *store.Store
	ctl   Controller
}

// NewSettingsHandler creates a SettingsHandler. ctl may be nil; when set its
// settings are reloaded after every change.
func NewSettingsHandler(s *store.Store, ctl Controller) *SettingsHandler {
	return &SettingsHandler{store: s, ctl: ctl}
}

// ServeHTTP routes collection and item requests.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/settings"), "/")

	if key == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	if !gainKeys[key] {
		writeError(w, http.StatusNotFound, "Unknown setting")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, key)
	case http.MethodPut:
		h.put(w, r, key)
	case http.MethodDelete:
		h.delete(w, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) list(w http.ResponseWriter) {
	settings, err := h.store.Settings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}
	if settings == nil {
		settings = []store.Setting{}
	}
	writeJSON(w, http.StatusOK, listSettingsResponse{Settings: settings})
}

func (h *SettingsHandler) get(w http.ResponseWriter, key string) {
	value, err := h.store.Settings().Get(key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}
	writeJSON(w, http.StatusOK, store.Setting{Key: key, Value: value})
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request, key string) {
	var req settingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(req.Value), 64)
	if err != nil || v <= 0 {
		writeError(w, http.StatusBadRequest, "Value must be a positive number")
		return
	}

	if err := h.store.Settings().Set(key, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save setting")
		return
	}
	h.reload()

	writeJSON(w, http.StatusOK, store.Setting{Key: key, Value: strconv.FormatFloat(v, 'f', -1, 64)})
}

func (h *SettingsHandler) delete(w http.ResponseWriter, key string) {
	if err := h.store.Settings().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	h.reload()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettingsHandler) reload() {
	if h.ctl != nil {
		h.ctl.ReloadSettings()
	}
}
