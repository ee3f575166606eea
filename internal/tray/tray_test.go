package tray

import (
	"testing"

	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/voice"
)

func TestToggleCommand(t *testing.T) {
	if got := toggleCommand(false); got != voice.CommandActivate {
		t.Errorf("expected %q while inactive, got %q", voice.CommandActivate, got)
	}
	if got := toggleCommand(true); got != voice.CommandBreak {
		t.Errorf("expected %q while active, got %q", voice.CommandBreak, got)
	}
}

func TestDriverLabel(t *testing.T) {
	if got := driverLabel(driver.None); got != "Driver: none" {
		t.Errorf("unexpected label %q", got)
	}
	if got := driverLabel(driver.State{ID: 72, Assigned: true}); got != "Driver: body 72" {
		t.Errorf("unexpected label %q", got)
	}
}

func TestHandleToggle_RoutesThroughGate(t *testing.T) {
	gate := voice.NewGate(voice.GateConfig{})

	tr := New()
	var sent []voice.Command
	tr.OnCommand(func(cmd voice.Command) voice.Result {
		sent = append(sent, cmd)
		return gate.Handle(t.Context(), voice.Utterance{Text: string(cmd), Confidence: 1})
	})

	tr.handleToggle()
	if !tr.IsActive() || !gate.Active() {
		t.Fatal("expected active after first toggle")
	}

	tr.handleToggle()
	if tr.IsActive() || gate.Active() {
		t.Fatal("expected inactive after second toggle")
	}

	if len(sent) != 2 || sent[0] != voice.CommandActivate || sent[1] != voice.CommandBreak {
		t.Errorf("unexpected commands: %v", sent)
	}
}
