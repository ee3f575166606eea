package skeleton

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrame(t *testing.T) {
	line := `{"seq":3,"timestamp_ms":1700000000000,"bodies":[
		{"id":42,"tracked":true,"hand_left":"lasso","hand_right":"closed","clipped":4,
		 "joints":{"HandLeft":{"x":-0.3,"y":0.4,"z":2.0},
		           "WristLeft":{"x":-0.3,"y":0.2,"z":2.0,"state":"inferred"},
		           "Tail":{"x":0,"y":0,"z":0}}},
		{"id":0,"tracked":false,"hand_left":"unknown","hand_right":"unknown","joints":{}}
	]}`

	frame, err := DecodeFrame([]byte(line))
	require.NoError(t, err)

	assert.Equal(t, uint64(3), frame.Seq)
	assert.Equal(t, int64(1700000000000), frame.Timestamp.UnixMilli())
	require.Len(t, frame.Bodies, 2)

	b := frame.Bodies[0]
	assert.Equal(t, uint64(42), b.ID)
	assert.True(t, b.Tracked)
	assert.Equal(t, HandLasso, b.HandLeft)
	assert.Equal(t, HandClosed, b.HandRight)
	assert.True(t, b.Clipped.Has(ClippedTop))
	assert.Len(t, b.Joints, 2, "unknown joint names are dropped")

	hand, ok := b.Joint(HandLeft)
	require.True(t, ok)
	assert.Equal(t, JointTracked, hand.State, "missing state defaults to tracked")
	assert.InDelta(t, 0.4, hand.Position.Y, 1e-9)

	wrist, ok := b.Joint(WristLeft)
	require.True(t, ok)
	assert.Equal(t, JointInferred, wrist.State)

	assert.False(t, frame.Bodies[1].Tracked)
}

func TestDecodeFrame_BadHandStateDegrades(t *testing.T) {
	frame, err := DecodeFrame([]byte(`{"bodies":[{"id":1,"tracked":true,"hand_left":"fist","hand_right":"open"}]}`))
	require.NoError(t, err)
	assert.Equal(t, HandUnknown, frame.Bodies[0].HandLeft)
	assert.Equal(t, HandOpen, frame.Bodies[0].HandRight)
	assert.True(t, frame.Timestamp.IsZero())
}

func TestDecodeFrame_Invalid(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"bodies":`))
	assert.Error(t, err)
}

func TestEncodeFrame_Decodes(t *testing.T) {
	in := Frame{Seq: 9, Bodies: []Body{RaisedBody(5, HandClosed, HandLasso)}}

	data, err := EncodeFrame(in)
	require.NoError(t, err)

	out, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, in.Seq, out.Seq)
	assert.Equal(t, in.Bodies, out.Bodies)
}

func TestReadFrames_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"seq":1,"bodies":[]}`,
		``,
		`not json`,
		`{"seq":2,"bodies":[]}`,
	}, "\n")

	frames, err := ReadFrames(strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, uint64(1), frames[0].Seq)
	assert.Equal(t, uint64(2), frames[1].Seq)
}
