package skeleton

import (
	"context"
	"sync"
)

// MockSource is a test implementation of the Source interface.
// Frames are delivered synchronously by Push.
type MockSource struct {
	mu      sync.Mutex
	handler FrameHandler
	status  Status
	closed  bool
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{status: StatusStopped}
}

// Start registers the handler.
func (m *MockSource) Start(ctx context.Context, handler FrameHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrSourceClosed
	}
	if m.handler != nil {
		return ErrAlreadyStarted
	}
	m.handler = handler
	m.status = StatusAvailable
	return nil
}

// Push delivers a frame to the registered handler.
// Returns false if no handler is registered.
func (m *MockSource) Push(frame Frame) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handler == nil {
		return false
	}
	m.handler(frame.Clone())
	return true
}

// SetStatus overrides the reported sensor status.
func (m *MockSource) SetStatus(s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
}

// Stop unregisters the handler.
func (m *MockSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = nil
	m.status = StatusStopped
	return nil
}

// Status returns the configured status.
func (m *MockSource) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = nil
	m.closed = true
	m.status = StatusStopped
	return nil
}

// BodyWithHands returns a tracked body standing 2m from the sensor with both
// wrists at shoulder height. Hand positions are relative to their wrists, in meters.
func BodyWithHands(id uint64, left, right HandState, leftOffset, rightOffset Point3D) Body {
	b := Body{
		ID:        id,
		Tracked:   true,
		HandLeft:  left,
		HandRight: right,
		Joints:    make(map[JointType]Joint, 8),
	}

	wristLeft := Point3D{X: -0.30, Y: 0.20, Z: 2.0}
	wristRight := Point3D{X: 0.30, Y: 0.20, Z: 2.0}

	b.Joints[SpineBase] = Joint{Position: Point3D{X: 0, Y: -0.30, Z: 2.0}, State: JointTracked}
	b.Joints[SpineShoulder] = Joint{Position: Point3D{X: 0, Y: 0.30, Z: 2.0}, State: JointTracked}
	b.Joints[Head] = Joint{Position: Point3D{X: 0, Y: 0.55, Z: 2.0}, State: JointTracked}
	b.Joints[WristLeft] = Joint{Position: wristLeft, State: JointTracked}
	b.Joints[WristRight] = Joint{Position: wristRight, State: JointTracked}
	b.Joints[HandLeft] = Joint{Position: add(wristLeft, leftOffset), State: JointTracked}
	b.Joints[HandRight] = Joint{Position: add(wristRight, rightOffset), State: JointTracked}

	return b
}

// RaisedBody returns a tracked body with both hands 10cm above their wrists.
func RaisedBody(id uint64, left, right HandState) Body {
	up := Point3D{Y: 0.10}
	return BodyWithHands(id, left, right, up, up)
}

// LoweredBody returns a tracked body with both hands 10cm below their wrists.
func LoweredBody(id uint64, left, right HandState) Body {
	down := Point3D{Y: -0.10}
	return BodyWithHands(id, left, right, down, down)
}

func add(a, b Point3D) Point3D {
	return Point3D{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}
