// Package api provides the JSON HTTP handlers for kathak.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/voice"
)

// Controller is the part of the running application the API drives.
type Controller interface {
	Status() app.Status
	Command(ctx context.Context, text string) voice.Result
	ReloadSettings() error
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
