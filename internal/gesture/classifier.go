// Package gesture translates the driver's hand poses and positions into
// semantic input events.
//
// The right hand drives the cursor (Closed) and the scroll wheel (Lasso).
// The left hand drives the buttons: Closed presses left, Open releases both,
// Lasso presses right. A hand is analyzed only while raised above its wrist.
package gesture

import (
	"math"

	"github.com/ayusman/kathak/internal/input"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/spatial"
)

// Config holds the motion multipliers.
type Config struct {
	// CursorGain scales right-hand display motion into cursor pixels.
	CursorGain float64 `yaml:"cursor_gain" json:"cursor_gain"`
	// ScrollGain scales right-hand horizontal motion into wheel units.
	ScrollGain float64 `yaml:"scroll_gain" json:"scroll_gain"`
}

// DefaultConfig returns the standard multipliers.
func DefaultConfig() Config {
	return Config{
		CursorGain: 7,
		ScrollGain: 30,
	}
}

// Side identifies a hand.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Hand is one hand of the driver, already mapped to display space.
type Hand struct {
	State    skeleton.HandState
	Position spatial.Point2D
	Wrist    spatial.Point2D
}

// Raised reports whether the hand is above its wrist on screen.
func (h Hand) Raised() bool {
	return h.Position.Y < h.Wrist.Y
}

// HandMemory is what was observed for one hand on its last raised frame.
type HandMemory struct {
	State    skeleton.HandState
	Position spatial.Point2D
	Seen     bool
}

// History is the per-hand pose and position memory carried between frames.
type History struct {
	Left  HandMemory
	Right HandMemory
}

// Reset forgets both hands.
func (h *History) Reset() {
	*h = History{}
}

// Classifier turns hand samples into events.
type Classifier struct {
	config Config
}

// NewClassifier creates a Classifier. Zero gains fall back to the defaults.
func NewClassifier(config Config) *Classifier {
	def := DefaultConfig()
	if config.CursorGain == 0 {
		config.CursorGain = def.CursorGain
	}
	if config.ScrollGain == 0 {
		config.ScrollGain = def.ScrollGain
	}
	return &Classifier{config: config}
}

// Config returns the active multipliers.
func (c *Classifier) Config() Config {
	return c.config
}

// Classify analyzes both hands and returns the frame's events, right hand first.
// A nil hand was not available this frame and is skipped.
func (c *Classifier) Classify(left, right *Hand, history *History, buttons input.ButtonState) []input.Event {
	var events []input.Event
	if right != nil {
		events = append(events, c.Right(*right, &history.Right)...)
	}
	if left != nil {
		events = append(events, c.Left(*left, &history.Left, buttons)...)
	}
	return events
}

// Right handles the cursor hand. The position memory is refreshed on every
// raised frame whatever the pose, so deltas always span consecutive raised frames.
func (c *Classifier) Right(h Hand, mem *HandMemory) []input.Event {
	if !h.Raised() {
		return nil
	}

	prev, seen := mem.Position, mem.Seen
	mem.State = h.State
	mem.Position = h.Position
	mem.Seen = true

	if !seen {
		return nil
	}
	delta := h.Position.Sub(prev)

	switch h.State {
	case skeleton.HandClosed:
		dx := scale(delta.X, c.config.CursorGain)
		dy := scale(delta.Y, c.config.CursorGain)
		return []input.Event{input.CursorDelta(dx, dy)}

	case skeleton.HandLasso:
		return []input.Event{input.ScrollDelta(scale(delta.X, c.config.ScrollGain))}
	}

	return nil
}

// Left handles the button hand. Closed is debounced against the previous
// pose; Lasso consults the live button state instead.
func (c *Classifier) Left(h Hand, mem *HandMemory, buttons input.ButtonState) []input.Event {
	if !h.Raised() {
		return nil
	}

	prev := mem.State
	defer func() {
		mem.State = h.State
		mem.Position = h.Position
		mem.Seen = true
	}()

	switch h.State {
	case skeleton.HandClosed:
		if prev == skeleton.HandClosed {
			return nil
		}
		return []input.Event{
			input.ButtonUp(input.ButtonRight),
			input.ButtonDown(input.ButtonLeft),
		}

	case skeleton.HandOpen:
		return []input.Event{
			input.ButtonUp(input.ButtonLeft),
			input.ButtonUp(input.ButtonRight),
		}

	case skeleton.HandLasso:
		var events []input.Event
		if !buttons.Pressed(input.ButtonRight) {
			events = append(events, input.ButtonDown(input.ButtonRight))
		}
		if buttons.Pressed(input.ButtonLeft) {
			events = append(events, input.ButtonUp(input.ButtonLeft))
		}
		return events
	}

	return nil
}

func scale(v, gain float64) int {
	return int(math.Round(v * gain))
}
