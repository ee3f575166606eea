package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/input"
	"github.com/ayusman/kathak/internal/log"
	"github.com/ayusman/kathak/internal/server"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/store"
	"github.com/ayusman/kathak/internal/voice"
	"github.com/ayusman/kathak/testdata"
)

func loadFrames(t *testing.T, name string) []skeleton.Frame {
	t.Helper()
	r, err := testdata.OpenRecording(name)
	if err != nil {
		t.Fatalf("OpenRecording() error = %v", err)
	}
	frames, err := skeleton.ReadFrames(r, log.Discard())
	if err != nil {
		t.Fatalf("ReadFrames() error = %v", err)
	}
	return frames
}

func countKind(events []input.Event, kind input.Kind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	source := skeleton.NewMockSource()
	recognizer := voice.NewMockRecognizer()
	speaker := voice.NewMockSpeaker()
	emitter := input.NewRecorder(0, 0)

	application := app.New(app.Config{
		Store:      s,
		Source:     source,
		SourceName: "mock",
		Recognizer: recognizer,
		Speaker:    speaker,
		Emitter:    emitter,
		Logger:     log.Discard(),
	})
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	stopped := false
	defer func() {
		if !stopped {
			application.Stop()
		}
	}()

	srv := server.New(server.Config{
		Store:       s,
		Controller:  application,
		Broadcaster: application.Broadcaster(),
		Logger:      log.Discard(),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()
	frames := loadFrames(t, "handover")

	t.Run("InactiveGateInjectsNothing", func(t *testing.T) {
		source.Push(frames[0])
		if got := emitter.Events(); len(got) != 0 {
			t.Errorf("expected no events while inactive, got %v", got)
		}
	})

	t.Run("VoiceActivation", func(t *testing.T) {
		if !recognizer.Say("Activate", 0.9) {
			t.Fatal("recognizer not started")
		}
		if !application.Gate().Active() {
			t.Fatal("expected gate to be active")
		}
		phrases := speaker.Phrases()
		if len(phrases) != 1 || phrases[0] != voice.ReplyActivated {
			t.Errorf("expected [%q], got %v", voice.ReplyActivated, phrases)
		}
	})

	t.Run("GesturesBecomeInput", func(t *testing.T) {
		for _, frame := range frames[1:4] {
			source.Push(frame)
		}

		events := emitter.Events()
		if countKind(events, input.KindCursorDelta) == 0 {
			t.Error("expected cursor movement")
		}
		if countKind(events, input.KindScrollDelta) == 0 {
			t.Error("expected a scroll")
		}
		if !emitter.Pressed(input.ButtonRight) {
			t.Error("expected the lasso to hold the right button")
		}
	})

	t.Run("StatusReportsDriver", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/status")
		if err != nil {
			t.Fatalf("status error = %v", err)
		}
		defer resp.Body.Close()

		var st app.Status
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if !st.Active || !st.Driver.Assigned || st.Driver.ID != 7 {
			t.Errorf("unexpected status: %+v", st)
		}
	})

	t.Run("BreakOverHTTP", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/commands", "application/json",
			strings.NewReader(`{"command": "break"}`))
		if err != nil {
			t.Fatalf("command error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		emitter.Reset()
		for _, frame := range frames[4:] {
			source.Push(frame)
		}
		if got := emitter.Events(); len(got) != 0 {
			t.Errorf("expected no events after break, got %v", got)
		}
	})

	t.Run("LowConfidenceIgnored", func(t *testing.T) {
		recognizer.Say("activate", 0.1)
		if application.Gate().Active() {
			t.Error("low confidence utterance should be ignored")
		}
	})

	t.Run("ShutdownByVoice", func(t *testing.T) {
		recognizer.Say("shut down", 0.8)
		select {
		case <-application.Done():
		case <-time.After(time.Second):
			t.Fatal("expected shutdown to be requested")
		}
	})

	application.Stop()
	stopped = true

	t.Run("JournalRecorded", func(t *testing.T) {
		sessionID := application.SessionID()

		drivers, err := s.DriverEvents().ListBySession(sessionID)
		if err != nil {
			t.Fatalf("ListBySession() error = %v", err)
		}
		var changes []string
		for _, d := range drivers {
			changes = append(changes, d.Change)
		}
		want := "acquired,lost,acquired"
		if got := strings.Join(changes, ","); got != want {
			t.Errorf("expected driver changes %s, got %s", want, got)
		}

		commands, err := s.VoiceCommands().ListBySession(sessionID)
		if err != nil {
			t.Fatalf("ListBySession() error = %v", err)
		}
		if len(commands) != 3 {
			t.Fatalf("expected 3 accepted commands, got %d", len(commands))
		}
		if commands[0].Command != string(voice.CommandActivate) || commands[1].Command != string(voice.CommandBreak) {
			t.Errorf("unexpected commands: %+v", commands)
		}

		sess, err := s.Sessions().GetByID(sessionID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if sess.EndedAt == nil {
			t.Error("expected session to be ended")
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions/" + application.SessionID() + "/drivers")
		if err != nil {
			t.Fatalf("drivers error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})
}

func TestE2E_StoredGainsApply(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	if err := s.Settings().Set(store.SettingCursorGain, "3"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	application := app.New(app.Config{
		Store:  s,
		Source: skeleton.NewMockSource(),
		Logger: log.Discard(),
	})
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	if got := application.Status().Gesture.CursorGain; got != 3 {
		t.Errorf("expected stored cursor gain 3, got %v", got)
	}

	srv := server.New(server.Config{Store: s, Controller: application, Logger: log.Discard()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings/scroll_gain", strings.NewReader(`{"value": "2.5"}`))
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("put setting error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	if got := application.Status().Gesture.ScrollGain; got != 2.5 {
		t.Errorf("expected scroll gain 2.5 after update, got %v", got)
	}
}
