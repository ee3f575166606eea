// Package spatial maps camera-space joint positions into 2-D display space.
package spatial

import "github.com/ayusman/kathak/internal/skeleton"

// MinDepth replaces negative depth values before projection.
// Inferred joints can report Z < 0, which would make the projection non-finite.
const MinDepth = 0.1

// Point2D is a display-space position. Y grows downward.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Projector converts a camera-space point to display space.
// It is supplied by the sensor integration.
type Projector interface {
	Project(p skeleton.Point3D) Point2D
}

// ProjectorFunc adapts a function to the Projector interface.
type ProjectorFunc func(p skeleton.Point3D) Point2D

// Project calls f(p).
func (f ProjectorFunc) Project(p skeleton.Point3D) Point2D {
	return f(p)
}

// ClampDepth returns p with a negative Z replaced by MinDepth.
func ClampDepth(p skeleton.Point3D) skeleton.Point3D {
	if p.Z < 0 {
		p.Z = MinDepth
	}
	return p
}

// Mapper projects joints after clamping their depth.
type Mapper struct {
	projector Projector
}

// NewMapper creates a Mapper. A nil projector uses the default pinhole model.
func NewMapper(projector Projector) *Mapper {
	if projector == nil {
		projector = NewPinhole(DefaultIntrinsics())
	}
	return &Mapper{projector: projector}
}

// Map projects p into display space.
func (m *Mapper) Map(p skeleton.Point3D) Point2D {
	return m.projector.Project(ClampDepth(p))
}

// MapJoint maps the joint t of body b. It reports false when the body lacks the joint.
func (m *Mapper) MapJoint(b *skeleton.Body, t skeleton.JointType) (Point2D, bool) {
	j, ok := b.Joint(t)
	if !ok {
		return Point2D{}, false
	}
	return m.Map(j.Position), true
}
