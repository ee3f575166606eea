package input

import (
	"fmt"
	"io"
	"sync"
)

// Writer is a dry-run Emitter that prints each event on its own line.
type Writer struct {
	Buttons

	mu   sync.Mutex
	out  io.Writer
	x, y int
}

// NewWriter creates a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) print(ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ev.Kind == KindCursorDelta {
		w.x += ev.DX
		w.y += ev.DY
	}
	_, err := fmt.Fprintf(w.out, "%s @(%d,%d)\n", ev, w.x, w.y)
	return err
}

// MoveRelative prints a CursorDelta.
func (w *Writer) MoveRelative(dx, dy int) error {
	return w.print(CursorDelta(dx, dy))
}

// ButtonDown prints a ButtonDown.
func (w *Writer) ButtonDown(b Button) error {
	w.Set(b, true)
	return w.print(ButtonDown(b))
}

// ButtonUp prints a ButtonUp.
func (w *Writer) ButtonUp(b Button) error {
	w.Set(b, false)
	return w.print(ButtonUp(b))
}

// Scroll prints a ScrollDelta.
func (w *Writer) Scroll(amount int) error {
	return w.print(ScrollDelta(amount))
}

// Location returns the simulated cursor position.
func (w *Writer) Location() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}
