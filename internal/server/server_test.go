package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/log"
	"github.com/ayusman/kathak/internal/overlay"
	"github.com/ayusman/kathak/internal/store"
)

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	s := New(Config{Logger: log.Discard()})

	rec := serve(s, http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", response["status"])
	}
	if _, exists := response["uptime"]; !exists {
		t.Error("expected 'uptime' field in response")
	}

	for _, method := range []string{http.MethodPost, http.MethodDelete} {
		if rec := serve(s, method, "/api/health"); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
		}
	}
}

// Routes are only mounted when their backing component is configured.
func TestServer_RoutesFollowConfig(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	bare := New(Config{Logger: log.Discard()})
	withStore := New(Config{Store: st, Logger: log.Discard()})

	tests := []struct {
		name   string
		server *Server
		path   string
		want   int
	}{
		{"status without controller", bare, "/api/status", http.StatusNotFound},
		{"settings without store", bare, "/api/settings", http.StatusNotFound},
		{"sessions without store", bare, "/api/sessions", http.StatusNotFound},
		{"bodies without broadcaster", bare, "/api/bodies", http.StatusNotFound},
		{"settings with store", withStore, "/api/settings", http.StatusOK},
		{"sessions with store", withStore, "/api/sessions", http.StatusOK},
		{"unknown api path", withStore, "/api/nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(tt.server, http.MethodGet, tt.path); rec.Code != tt.want {
				t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestServer_StreamNeedsOverlay(t *testing.T) {
	hub := app.NewBroadcaster()
	defer hub.Close()

	s := New(Config{Broadcaster: hub, Logger: log.Discard()})
	if rec := serve(s, http.MethodGet, "/api/stream"); rec.Code != http.StatusNotFound {
		t.Errorf("expected /api/stream to be unmounted without an overlay, got %d", rec.Code)
	}

	s = New(Config{Broadcaster: hub, Overlay: overlay.NewRenderer(64, 48), Logger: log.Discard()})
	if _, pattern := s.mux.Handler(httptest.NewRequest(http.MethodGet, "/api/stream", nil)); pattern != "/api/stream" {
		t.Errorf("expected /api/stream to be mounted, got pattern %q", pattern)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	index := "<html><body>kathak</body></html>"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	s := New(Config{StaticDir: dir, Logger: log.Discard()})

	rec := serve(s, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if rec.Body.String() != index {
		t.Errorf("expected body %q, got %q", index, rec.Body.String())
	}

	if rec := serve(s, http.MethodGet, "/missing.html"); rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	if rec := serve(New(Config{Logger: log.Discard()}), http.MethodGet, "/"); rec.Code != http.StatusNotFound {
		t.Errorf("root without static dir: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_HTTPServer(t *testing.T) {
	s := New(Config{Logger: log.Discard()})
	srv := s.HTTPServer("127.0.0.1:0")

	if srv.Addr != "127.0.0.1:0" {
		t.Errorf("expected addr 127.0.0.1:0, got %s", srv.Addr)
	}
	if srv.Handler != s {
		t.Error("expected the server to be the handler")
	}
	if srv.ReadHeaderTimeout <= 0 {
		t.Error("expected a read header timeout")
	}
}
