// Package driver selects the single body whose hands control input.
package driver

import (
	"github.com/ayusman/kathak/internal/skeleton"
)

// State is the identity of the current driver.
type State struct {
	ID       uint64 `json:"id"`
	Assigned bool   `json:"assigned"`
}

// None is the unassigned state.
var None = State{}

// Change reports how the driver changed during a Select call.
type Change int

const (
	Unchanged Change = iota
	Acquired
	Lost
)

func (c Change) String() string {
	switch c {
	case Acquired:
		return "acquired"
	case Lost:
		return "lost"
	default:
		return "unchanged"
	}
}

// Selector keeps one driver identity across frames.
// The first tracked body in slot order becomes the driver and keeps the role
// until it is missing from a frame's tracked set.
type Selector struct {
	state State
}

// NewSelector creates a Selector with no driver.
func NewSelector() *Selector {
	return &Selector{}
}

// Current returns the current driver state.
func (s *Selector) Current() State {
	return s.state
}

// Reset clears the driver.
func (s *Selector) Reset() {
	s.state = None
}

// Select picks this frame's driver from bodies, which are in slot order.
// It must be called once per frame with every slot, not only analyzed bodies.
//
// When the assigned driver is missing the state is cleared and nil is returned;
// a replacement is acquired on the next frame, never the same one.
func (s *Selector) Select(bodies []skeleton.Body) (*skeleton.Body, Change) {
	if !s.state.Assigned {
		for i := range bodies {
			if bodies[i].Tracked {
				s.state = State{ID: bodies[i].ID, Assigned: true}
				return &bodies[i], Acquired
			}
		}
		return nil, Unchanged
	}

	for i := range bodies {
		if bodies[i].Tracked && bodies[i].ID == s.state.ID {
			return &bodies[i], Unchanged
		}
	}

	s.state = None
	return nil, Lost
}
