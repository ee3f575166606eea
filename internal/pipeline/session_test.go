package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/gesture"
	"github.com/ayusman/kathak/internal/input"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/spatial"
	"github.com/ayusman/kathak/testdata"
)

// centimeters projects camera meters to display centimeters with Y down.
var centimeters = spatial.ProjectorFunc(func(p skeleton.Point3D) spatial.Point2D {
	return spatial.Point2D{X: p.X * 100, Y: -p.Y * 100}
})

func newTestSession() *Session {
	return NewSession(spatial.NewMapper(centimeters), gesture.NewClassifier(gesture.DefaultConfig()))
}

func frame(seq uint64, bodies ...skeleton.Body) skeleton.Frame {
	return skeleton.Frame{Seq: seq, Bodies: bodies}
}

func traceLine(res Result) string {
	drv := "none"
	if res.Driver.Assigned {
		drv = fmt.Sprintf("%d", res.Driver.ID)
	}
	events := make([]string, len(res.Events))
	for i, ev := range res.Events {
		events[i] = ev.String()
	}
	return fmt.Sprintf("seq=%d driver=%s change=%s events=[%s]\n",
		res.Seq, drv, res.Change, strings.Join(events, " "))
}

func TestSession_HandoverGolden(t *testing.T) {
	r, err := testdata.OpenRecording("handover")
	require.NoError(t, err)
	frames, err := skeleton.ReadFrames(r, nil)
	require.NoError(t, err)
	require.Len(t, frames, 6)

	s := newTestSession()
	rec := input.NewRecorder(0, 0)

	var trace strings.Builder
	for _, f := range frames {
		res := s.Process(f, true, rec)
		require.NoError(t, input.Dispatch(rec, res.Events))
		trace.WriteString(traceLine(res))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "handover", []byte(trace.String()))
}

func TestSession_InactiveEmitsNothing(t *testing.T) {
	poses := []skeleton.HandState{
		skeleton.HandOpen, skeleton.HandClosed, skeleton.HandLasso,
		skeleton.HandClosed, skeleton.HandOpen, skeleton.HandUnknown,
	}

	s := newTestSession()
	rec := input.NewRecorder(0, 0)
	for i, left := range poses {
		for j, right := range poses {
			offset := skeleton.Point3D{X: float64(i+j) * 0.01, Y: 0.10}
			b := skeleton.BodyWithHands(1, left, right, offset, offset)
			res := s.Process(frame(uint64(i*len(poses)+j), b), false, rec)
			assert.Empty(t, res.Events)
			assert.False(t, res.Active)
		}
	}
	assert.Empty(t, rec.Events())
}

func TestSession_HistoryUpdatedWhileInactive(t *testing.T) {
	s := newTestSession()
	rec := input.NewRecorder(0, 0)

	s.Process(frame(1, skeleton.RaisedBody(1, skeleton.HandClosed, skeleton.HandClosed)), false, rec)

	h := s.History()
	assert.True(t, h.Left.Seen)
	assert.Equal(t, skeleton.HandClosed, h.Left.State)
	assert.True(t, h.Right.Seen)

	// The left hand was already closed while inactive, so activating does not press.
	res := s.Process(frame(2, skeleton.RaisedBody(1, skeleton.HandClosed, skeleton.HandClosed)), true, rec)
	assert.Equal(t, []input.Event{input.CursorDelta(0, 0)}, res.Events)
}

func TestSession_LeftDebounceSequence(t *testing.T) {
	s := newTestSession()
	rec := input.NewRecorder(0, 0)

	var got []input.Event
	for i, pose := range []skeleton.HandState{
		skeleton.HandOpen, skeleton.HandClosed, skeleton.HandClosed, skeleton.HandClosed, skeleton.HandOpen,
	} {
		b := skeleton.RaisedBody(3, pose, skeleton.HandOpen)
		res := s.Process(frame(uint64(i), b), true, rec)
		got = append(got, res.Events...)
	}

	want := []input.Event{
		input.ButtonUp(input.ButtonLeft), input.ButtonUp(input.ButtonRight),
		input.ButtonUp(input.ButtonRight), input.ButtonDown(input.ButtonLeft),
		input.ButtonUp(input.ButtonLeft), input.ButtonUp(input.ButtonRight),
	}
	assert.Equal(t, want, got)
}

func TestSession_DropoutKeepsLeftHold(t *testing.T) {
	s := newTestSession()
	rec := input.NewRecorder(0, 0)

	closed := skeleton.RaisedBody(1, skeleton.HandClosed, skeleton.HandOpen)
	frames := []skeleton.Frame{
		frame(1, closed),
		frame(2, skeleton.Body{}),
		frame(3, closed),
		frame(4, closed),
	}

	var changes []driver.Change
	var all []input.Event
	for _, f := range frames {
		res := s.Process(f, true, rec)
		require.NoError(t, input.Dispatch(rec, res.Events))
		changes = append(changes, res.Change)
		all = append(all, res.Events...)
	}

	assert.Equal(t, []driver.Change{driver.Acquired, driver.Lost, driver.Acquired, driver.Unchanged}, changes)

	downs := 0
	for _, ev := range all {
		if ev == input.ButtonDown(input.ButtonLeft) {
			downs++
		}
	}
	assert.Equal(t, 1, downs, "one continuous hold must press once: %v", all)
	assert.True(t, rec.Pressed(input.ButtonLeft))
	assert.Equal(t, skeleton.HandClosed, s.History().Left.State)
}

func TestSession_MissingJointsSkipHand(t *testing.T) {
	s := newTestSession()
	rec := input.NewRecorder(0, 0)

	b := skeleton.RaisedBody(4, skeleton.HandOpen, skeleton.HandClosed)
	delete(b.Joints, skeleton.WristLeft)

	res := s.Process(frame(1, b), true, rec)
	assert.Equal(t, driver.Acquired, res.Change)
	assert.Empty(t, res.Events)
	assert.False(t, s.History().Left.Seen)
	assert.True(t, s.History().Right.Seen)
}

func TestSession_Snapshot(t *testing.T) {
	s := newTestSession()
	rec := input.NewRecorder(0, 0)

	other := skeleton.RaisedBody(8, skeleton.HandOpen, skeleton.HandOpen)
	other.Joints[skeleton.Head] = skeleton.Joint{Position: skeleton.Point3D{Z: -5}, State: skeleton.JointNotTracked}

	res := s.Process(frame(1,
		skeleton.RaisedBody(5, skeleton.HandOpen, skeleton.HandOpen),
		skeleton.Body{},
		other,
	), true, rec)

	require.Len(t, res.Bodies, 2)
	assert.True(t, res.Bodies[0].Driver)
	assert.Equal(t, uint64(5), res.Bodies[0].ID)
	assert.False(t, res.Bodies[1].Driver)
	assert.NotContains(t, res.Bodies[1].Joints, skeleton.Head)
	assert.Equal(t, spatial.Point2D{X: 30, Y: -30}, roundPoint(res.Bodies[0].Joints[skeleton.HandRight]))
}

func TestSession_EmptyFrame(t *testing.T) {
	s := newTestSession()
	res := s.Process(frame(1), true, input.NewRecorder(0, 0))
	assert.Equal(t, driver.None, res.Driver)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Bodies)
}

func TestNewSession_UniqueIDs(t *testing.T) {
	a := NewSession(nil, nil)
	b := NewSession(nil, nil)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func roundPoint(p spatial.Point2D) spatial.Point2D {
	return spatial.Point2D{X: float64(int(p.X + 0.5)), Y: -float64(int(-p.Y + 0.5))}
}
