// Package robot injects input events into the desktop session through
// robotgo.
package robot

import (
	"log/slog"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/kathak/internal/input"
)

// Robot injects events into the desktop session through robotgo.
// Button state is tracked locally since robotgo cannot query it.
type Robot struct {
	input.Buttons
	logger *slog.Logger
}

// New creates a Robot emitter.
func New(logger *slog.Logger) *Robot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Robot{logger: logger.With("emitter", "robot")}
}

// MoveRelative moves the cursor by (dx, dy) pixels.
func (r *Robot) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

// ButtonDown presses b at the current cursor location.
func (r *Robot) ButtonDown(b input.Button) error {
	x, y := r.Location()
	r.logger.Debug("button down", "button", b, "x", x, "y", y)
	if err := robotgo.Toggle(robotButton(b), "down"); err != nil {
		return err
	}
	r.Set(b, true)
	return nil
}

// ButtonUp releases b at the current cursor location.
func (r *Robot) ButtonUp(b input.Button) error {
	x, y := r.Location()
	r.logger.Debug("button up", "button", b, "x", x, "y", y)
	if err := robotgo.Toggle(robotButton(b), "up"); err != nil {
		return err
	}
	r.Set(b, false)
	return nil
}

// Scroll turns the vertical wheel by amount at the current cursor location.
func (r *Robot) Scroll(amount int) error {
	if amount == 0 {
		return nil
	}
	x, y := r.Location()
	r.logger.Debug("scroll", "amount", amount, "x", x, "y", y)
	robotgo.Scroll(0, amount)
	return nil
}

// Location returns the cursor position.
func (r *Robot) Location() (int, int) {
	return robotgo.Location()
}

func robotButton(b input.Button) string {
	if b == input.ButtonRight {
		return "right"
	}
	return "left"
}
