package input

import (
	"fmt"
	"sync"
)

// ButtonState reports whether a button is currently held down.
type ButtonState interface {
	Pressed(b Button) bool
}

// Emitter injects input into the platform.
type Emitter interface {
	ButtonState

	MoveRelative(dx, dy int) error
	ButtonDown(b Button) error
	ButtonUp(b Button) error
	Scroll(amount int) error

	// Location returns the current cursor position in screen coordinates.
	Location() (x, y int)
}

// Dispatch applies events to em in order. It stops at the first failure.
func Dispatch(em Emitter, events []Event) error {
	for _, ev := range events {
		var err error
		switch ev.Kind {
		case KindCursorDelta:
			err = em.MoveRelative(ev.DX, ev.DY)
		case KindButtonDown:
			err = em.ButtonDown(ev.Button)
		case KindButtonUp:
			err = em.ButtonUp(ev.Button)
		case KindScrollDelta:
			err = em.Scroll(ev.Amount)
		default:
			err = fmt.Errorf("unknown event kind %d", int(ev.Kind))
		}
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", ev, err)
		}
	}
	return nil
}

// Buttons tracks which buttons this process holds down. Emitters embed it
// to satisfy ButtonState.
type Buttons struct {
	mu      sync.Mutex
	pressed [2]bool
}

// Set records b as pressed or released.
func (s *Buttons) Set(b Button, down bool) {
	if b != ButtonLeft && b != ButtonRight {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressed[b] = down
}

// Pressed reports whether b is held down.
func (s *Buttons) Pressed(b Button) bool {
	if b != ButtonLeft && b != ButtonRight {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pressed[b]
}
