package skeleton

import (
	"context"
	"errors"
)

// Common errors returned by sources.
var (
	ErrSourceClosed      = errors.New("skeleton: source closed")
	ErrSourceUnavailable = errors.New("skeleton: sensor unavailable")
	ErrAlreadyStarted    = errors.New("skeleton: source already started")
)

// Status describes the availability of the sensor behind a Source.
type Status string

const (
	StatusStopped     Status = "stopped"
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// FrameHandler receives one frame per sensor tick.
// Sources never invoke a handler concurrently with itself.
type FrameHandler func(frame Frame)

// Source defines the interface for sensor feeds producing body frames.
type Source interface {
	// Start begins delivering frames to handler until ctx is done or Stop is called.
	// A sensor that cannot be reached is reported through Status, not as an error.
	Start(ctx context.Context, handler FrameHandler) error

	// Stop unsubscribes the handler. No handler call is in flight once Stop returns.
	Stop() error

	// Status returns the current sensor availability.
	Status() Status

	// Close releases any resources held by the source.
	Close() error
}

// NoSource is a Source without a sensor. It never delivers frames.
type NoSource struct{}

// Start does nothing.
func (NoSource) Start(context.Context, FrameHandler) error { return nil }

// Stop does nothing.
func (NoSource) Stop() error { return nil }

// Status always reports the sensor unavailable.
func (NoSource) Status() Status { return StatusUnavailable }

// Close does nothing.
func (NoSource) Close() error { return nil }
