// Package input defines the semantic input events produced by gesture
// translation and the emitters that inject them into the OS.
package input

import (
	"encoding/json"
	"fmt"
)

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "Left"
	case ButtonRight:
		return "Right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Kind is the tag of an Event.
type Kind int

const (
	KindCursorDelta Kind = iota
	KindButtonDown
	KindButtonUp
	KindScrollDelta
)

func (k Kind) String() string {
	switch k {
	case KindCursorDelta:
		return "CursorDelta"
	case KindButtonDown:
		return "ButtonDown"
	case KindButtonUp:
		return "ButtonUp"
	case KindScrollDelta:
		return "ScrollDelta"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a semantic input event. Only the fields of its Kind are meaningful.
type Event struct {
	Kind   Kind
	Button Button
	DX     int
	DY     int
	Amount int
}

// CursorDelta moves the cursor relative to its current position.
func CursorDelta(dx, dy int) Event {
	return Event{Kind: KindCursorDelta, DX: dx, DY: dy}
}

// ButtonDown presses b.
func ButtonDown(b Button) Event {
	return Event{Kind: KindButtonDown, Button: b}
}

// ButtonUp releases b.
func ButtonUp(b Button) Event {
	return Event{Kind: KindButtonUp, Button: b}
}

// ScrollDelta scrolls the wheel by amount.
func ScrollDelta(amount int) Event {
	return Event{Kind: KindScrollDelta, Amount: amount}
}

func (e Event) String() string {
	switch e.Kind {
	case KindCursorDelta:
		return fmt.Sprintf("CursorDelta(%d,%d)", e.DX, e.DY)
	case KindButtonDown, KindButtonUp:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Button)
	case KindScrollDelta:
		return fmt.Sprintf("ScrollDelta(%d)", e.Amount)
	default:
		return e.Kind.String()
	}
}

// MarshalJSON encodes only the fields of the event's kind.
func (e Event) MarshalJSON() ([]byte, error) {
	out := map[string]any{"kind": e.Kind.String()}
	switch e.Kind {
	case KindCursorDelta:
		out["dx"] = e.DX
		out["dy"] = e.DY
	case KindButtonDown, KindButtonUp:
		out["button"] = e.Button.String()
	case KindScrollDelta:
		out["amount"] = e.Amount
	}
	return json.Marshal(out)
}
