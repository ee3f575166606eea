// Package pipeline composes driver selection, spatial mapping and gesture
// classification into one per-frame step over an owned session state.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/gesture"
	"github.com/ayusman/kathak/internal/input"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/spatial"
)

// BodySnapshot is a tracked body mapped to display space for visualization.
type BodySnapshot struct {
	ID        uint64                                 `json:"id"`
	Driver    bool                                   `json:"driver"`
	HandLeft  skeleton.HandState                     `json:"hand_left"`
	HandRight skeleton.HandState                     `json:"hand_right"`
	Clipped   skeleton.ClippedEdges                  `json:"clipped"`
	Joints    map[skeleton.JointType]spatial.Point2D `json:"joints"`
}

// Result is the outcome of one frame.
type Result struct {
	Seq    uint64        `json:"seq"`
	Active bool          `json:"active"`
	Driver driver.State  `json:"driver"`
	Change driver.Change `json:"-"`
	// Previous is the driver before this frame; it names the body on Lost.
	Previous driver.State   `json:"-"`
	Events   []input.Event  `json:"events,omitempty"`
	Bodies   []BodySnapshot `json:"bodies"`
}

// Session holds the state carried between frames of one run: the driver
// identity and the per-hand pose history. It is not safe for concurrent use;
// frames are processed one at a time.
type Session struct {
	id         string
	selector   *driver.Selector
	mapper     *spatial.Mapper
	classifier *gesture.Classifier
	history    gesture.History
}

// NewSession creates a session with a fresh id.
func NewSession(mapper *spatial.Mapper, classifier *gesture.Classifier) *Session {
	if mapper == nil {
		mapper = spatial.NewMapper(nil)
	}
	if classifier == nil {
		classifier = gesture.NewClassifier(gesture.DefaultConfig())
	}
	return &Session{
		id:         uuid.New().String(),
		selector:   driver.NewSelector(),
		mapper:     mapper,
		classifier: classifier,
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Driver returns the current driver state.
func (s *Session) Driver() driver.State {
	return s.selector.Current()
}

// History returns a copy of the pose history.
func (s *Session) History() gesture.History {
	return s.history
}

// SetClassifier swaps the classifier, for example after the gains change.
func (s *Session) SetClassifier(c *gesture.Classifier) {
	s.classifier = c
}

// Classifier returns the classifier in use.
func (s *Session) Classifier() *gesture.Classifier {
	return s.classifier
}

// Process runs one frame. Driver selection and classification always run so
// the history stays current; events are returned only while active.
func (s *Session) Process(frame skeleton.Frame, active bool, buttons input.ButtonState) Result {
	res := Result{Seq: frame.Seq, Active: active, Previous: s.selector.Current()}

	body, change := s.selector.Select(frame.Bodies)
	res.Driver = s.selector.Current()
	res.Change = change

	if body != nil {
		left := s.hand(body, skeleton.HandLeft, skeleton.WristLeft, body.HandLeft)
		right := s.hand(body, skeleton.HandRight, skeleton.WristRight, body.HandRight)

		events := s.classifier.Classify(left, right, &s.history, buttons)
		if active {
			res.Events = events
		}
	}

	res.Bodies = s.snapshot(frame.Bodies, res.Driver)
	return res
}

// hand maps one side of the driver. A side missing its hand or wrist joint is
// reported as nil and skipped by the classifier.
func (s *Session) hand(b *skeleton.Body, handJoint, wristJoint skeleton.JointType, state skeleton.HandState) *gesture.Hand {
	pos, ok := s.mapper.MapJoint(b, handJoint)
	if !ok {
		return nil
	}
	wrist, ok := s.mapper.MapJoint(b, wristJoint)
	if !ok {
		return nil
	}
	return &gesture.Hand{State: state, Position: pos, Wrist: wrist}
}

func (s *Session) snapshot(bodies []skeleton.Body, drv driver.State) []BodySnapshot {
	out := make([]BodySnapshot, 0, len(bodies))
	for i := range bodies {
		b := &bodies[i]
		if !b.Tracked {
			continue
		}
		snap := BodySnapshot{
			ID:        b.ID,
			Driver:    drv.Assigned && drv.ID == b.ID,
			HandLeft:  b.HandLeft,
			HandRight: b.HandRight,
			Clipped:   b.Clipped,
			Joints:    make(map[skeleton.JointType]spatial.Point2D, len(b.Joints)),
		}
		for t, j := range b.Joints {
			if j.State == skeleton.JointNotTracked {
				continue
			}
			snap.Joints[t] = s.mapper.Map(j.Position)
		}
		out = append(out, snap)
	}
	return out
}
