// Package skeleton provides the tracked-body data model and the sensor feed
// interfaces that deliver per-frame body snapshots.
package skeleton

import (
	"fmt"
	"strings"
	"time"
)

// BodyCount is the number of body slots the sensor reports per frame.
const BodyCount = 6

// JointType identifies a joint of the tracked skeleton.
// Indices follow the Kinect v2 body model.
type JointType int

const (
	SpineBase JointType = iota
	SpineMid
	Neck
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight
	SpineShoulder
	HandTipLeft
	ThumbLeft
	HandTipRight
	ThumbRight
	JointCount
)

var jointNames = [JointCount]string{
	"SpineBase", "SpineMid", "Neck", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
	"SpineShoulder", "HandTipLeft", "ThumbLeft", "HandTipRight", "ThumbRight",
}

func (j JointType) String() string {
	if j < 0 || j >= JointCount {
		return fmt.Sprintf("JointType(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJointType returns the joint with the given name (case-insensitive).
func ParseJointType(name string) (JointType, error) {
	for i, n := range jointNames {
		if strings.EqualFold(n, name) {
			return JointType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// MarshalText implements encoding.TextMarshaler so joints can key JSON objects.
func (j JointType) MarshalText() ([]byte, error) {
	if j < 0 || j >= JointCount {
		return nil, fmt.Errorf("invalid joint %d", int(j))
	}
	return []byte(jointNames[j]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (j *JointType) UnmarshalText(text []byte) error {
	parsed, err := ParseJointType(string(text))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// TrackingState describes how confidently a joint position was measured.
type TrackingState int

const (
	JointNotTracked TrackingState = iota
	JointInferred
	JointTracked
)

var trackingStateNames = []string{"not_tracked", "inferred", "tracked"}

func (s TrackingState) String() string {
	if s < 0 || int(s) >= len(trackingStateNames) {
		return fmt.Sprintf("TrackingState(%d)", int(s))
	}
	return trackingStateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s TrackingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TrackingState) UnmarshalText(text []byte) error {
	for i, n := range trackingStateNames {
		if strings.EqualFold(n, string(text)) {
			*s = TrackingState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tracking state %q", string(text))
}

// HandState is the classified pose of a hand.
type HandState int

const (
	HandUnknown HandState = iota
	HandNotTracked
	HandOpen
	HandClosed
	HandLasso
)

var handStateNames = []string{"unknown", "not_tracked", "open", "closed", "lasso"}

func (h HandState) String() string {
	if h < 0 || int(h) >= len(handStateNames) {
		return fmt.Sprintf("HandState(%d)", int(h))
	}
	return handStateNames[h]
}

// Analyzable reports whether the pose is one the gesture classifier acts on.
func (h HandState) Analyzable() bool {
	return h == HandOpen || h == HandClosed || h == HandLasso
}

// MarshalText implements encoding.TextMarshaler.
func (h HandState) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *HandState) UnmarshalText(text []byte) error {
	for i, n := range handStateNames {
		if strings.EqualFold(n, string(text)) {
			*h = HandState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown hand state %q", string(text))
}

// ClippedEdges flags which frame edges cut through the body.
type ClippedEdges uint8

const (
	ClippedRight ClippedEdges = 1 << iota
	ClippedLeft
	ClippedTop
	ClippedBottom
)

// Has reports whether edge e is set.
func (c ClippedEdges) Has(e ClippedEdges) bool {
	return c&e != 0
}

// Point3D represents a camera-space position in meters.
// X grows to the sensor's left, Y grows up and Z grows away from the sensor.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Joint is a single joint position with its tracking state.
type Joint struct {
	Position Point3D       `json:"position"`
	State    TrackingState `json:"state"`
}

// Body is one tracked person in one frame.
type Body struct {
	ID        uint64              `json:"id"`
	Tracked   bool                `json:"tracked"`
	Joints    map[JointType]Joint `json:"joints"`
	HandLeft  HandState           `json:"hand_left"`
	HandRight HandState           `json:"hand_right"`
	Clipped   ClippedEdges        `json:"clipped"`
}

// Joint returns the joint of the given type and whether the body carries it.
func (b *Body) Joint(t JointType) (Joint, bool) {
	if b == nil || b.Joints == nil {
		return Joint{}, false
	}
	j, ok := b.Joints[t]
	return j, ok
}

// Clone returns a deep copy of the body.
func (b Body) Clone() Body {
	out := b
	if b.Joints != nil {
		out.Joints = make(map[JointType]Joint, len(b.Joints))
		for k, v := range b.Joints {
			out.Joints[k] = v
		}
	}
	return out
}

// Frame is the set of body slots reported by the sensor at one instant.
// Bodies are in sensor slot order.
type Frame struct {
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Bodies    []Body    `json:"bodies"`
}

// Clone returns a deep copy of the frame so handlers receive an immutable snapshot.
func (f Frame) Clone() Frame {
	out := f
	if f.Bodies != nil {
		out.Bodies = make([]Body, len(f.Bodies))
		for i, b := range f.Bodies {
			out.Bodies[i] = b.Clone()
		}
	}
	return out
}

// Tracked returns the tracked bodies in slot order.
func (f Frame) Tracked() []Body {
	var tracked []Body
	for _, b := range f.Bodies {
		if b.Tracked {
			tracked = append(tracked, b)
		}
	}
	return tracked
}
