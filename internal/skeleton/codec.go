package skeleton

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonFrame is the newline-delimited wire format shared by recordings and
// tracker bridges. Joints are keyed by name, timestamps are milliseconds.
type jsonFrame struct {
	Seq         uint64     `json:"seq"`
	TimestampMs int64      `json:"timestamp_ms"`
	Bodies      []jsonBody `json:"bodies"`
}

type jsonBody struct {
	ID        uint64               `json:"id"`
	Tracked   bool                 `json:"tracked"`
	HandLeft  string               `json:"hand_left"`
	HandRight string               `json:"hand_right"`
	Clipped   uint8                `json:"clipped"`
	Joints    map[string]jsonJoint `json:"joints"`
}

type jsonJoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	State string  `json:"state,omitempty"`
}

// DecodeFrame parses one wire-format line into a Frame.
// Unknown joint names are ignored so bridges may send extra points.
func DecodeFrame(line []byte) (Frame, error) {
	var jf jsonFrame
	if err := json.Unmarshal(line, &jf); err != nil {
		return Frame{}, fmt.Errorf("parse frame: %w", err)
	}

	frame := Frame{
		Seq:    jf.Seq,
		Bodies: make([]Body, len(jf.Bodies)),
	}
	if jf.TimestampMs != 0 {
		frame.Timestamp = time.UnixMilli(jf.TimestampMs).UTC()
	}

	for i, jb := range jf.Bodies {
		frame.Bodies[i] = jb.toBody()
	}

	return frame, nil
}

// EncodeFrame renders a frame in the wire format, without a trailing newline.
func EncodeFrame(f Frame) ([]byte, error) {
	jf := jsonFrame{
		Seq:    f.Seq,
		Bodies: make([]jsonBody, len(f.Bodies)),
	}
	if !f.Timestamp.IsZero() {
		jf.TimestampMs = f.Timestamp.UnixMilli()
	}

	for i, b := range f.Bodies {
		jb := jsonBody{
			ID:        b.ID,
			Tracked:   b.Tracked,
			HandLeft:  b.HandLeft.String(),
			HandRight: b.HandRight.String(),
			Clipped:   uint8(b.Clipped),
			Joints:    make(map[string]jsonJoint, len(b.Joints)),
		}
		for t, j := range b.Joints {
			jb.Joints[t.String()] = jsonJoint{
				X:     j.Position.X,
				Y:     j.Position.Y,
				Z:     j.Position.Z,
				State: j.State.String(),
			}
		}
		jf.Bodies[i] = jb
	}

	return json.Marshal(jf)
}

func (jb jsonBody) toBody() Body {
	b := Body{
		ID:      jb.ID,
		Tracked: jb.Tracked,
		Clipped: ClippedEdges(jb.Clipped),
		Joints:  make(map[JointType]Joint, len(jb.Joints)),
	}

	// A malformed hand state degrades to unknown rather than dropping the body.
	if err := b.HandLeft.UnmarshalText([]byte(jb.HandLeft)); err != nil {
		b.HandLeft = HandUnknown
	}
	if err := b.HandRight.UnmarshalText([]byte(jb.HandRight)); err != nil {
		b.HandRight = HandUnknown
	}

	for name, jj := range jb.Joints {
		t, err := ParseJointType(name)
		if err != nil {
			continue
		}
		state := JointTracked
		if jj.State != "" {
			if err := state.UnmarshalText([]byte(jj.State)); err != nil {
				state = JointInferred
			}
		}
		b.Joints[t] = Joint{
			Position: Point3D{X: jj.X, Y: jj.Y, Z: jj.Z},
			State:    state,
		}
	}

	return b
}
