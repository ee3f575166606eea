package input

import "sync"

// Recorder is an Emitter that records events instead of injecting them.
type Recorder struct {
	Buttons

	mu     sync.Mutex
	events []Event
	x, y   int
	err    error
}

// NewRecorder creates a Recorder with the cursor at (x, y).
func NewRecorder(x, y int) *Recorder {
	return &Recorder{x: x, y: y}
}

// SetError makes every subsequent call fail with err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// SetPressed forces the live state of b.
func (r *Recorder) SetPressed(b Button, down bool) {
	r.Set(b, down)
}

func (r *Recorder) record(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	if ev.Kind == KindCursorDelta {
		r.x += ev.DX
		r.y += ev.DY
	}
	return nil
}

// MoveRelative records a CursorDelta.
func (r *Recorder) MoveRelative(dx, dy int) error {
	return r.record(CursorDelta(dx, dy))
}

// ButtonDown records a ButtonDown and marks b pressed.
func (r *Recorder) ButtonDown(b Button) error {
	if err := r.record(ButtonDown(b)); err != nil {
		return err
	}
	r.Set(b, true)
	return nil
}

// ButtonUp records a ButtonUp and marks b released.
func (r *Recorder) ButtonUp(b Button) error {
	if err := r.record(ButtonUp(b)); err != nil {
		return err
	}
	r.Set(b, false)
	return nil
}

// Scroll records a ScrollDelta.
func (r *Recorder) Scroll(amount int) error {
	return r.record(ScrollDelta(amount))
}

// Location returns the simulated cursor position.
func (r *Recorder) Location() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.x, r.y
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset clears recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
