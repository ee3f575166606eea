package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/kathak/internal/skeleton"
)

func tracked(id uint64) skeleton.Body {
	return skeleton.Body{ID: id, Tracked: true}
}

func untracked(id uint64) skeleton.Body {
	return skeleton.Body{ID: id, Tracked: false}
}

func TestSelector_SingleBodyLifecycle(t *testing.T) {
	s := NewSelector()

	// Empty slots before the person walks in.
	got, change := s.Select([]skeleton.Body{untracked(0), untracked(0)})
	assert.Nil(t, got)
	assert.Equal(t, Unchanged, change)
	assert.Equal(t, None, s.Current())

	// First tracked frame assigns the driver.
	got, change = s.Select([]skeleton.Body{untracked(0), tracked(11)})
	require.NotNil(t, got)
	assert.Equal(t, uint64(11), got.ID)
	assert.Equal(t, Acquired, change)

	for i := 0; i < 5; i++ {
		got, change = s.Select([]skeleton.Body{untracked(0), tracked(11)})
		require.NotNil(t, got)
		assert.Equal(t, uint64(11), got.ID)
		assert.Equal(t, Unchanged, change)
		assert.Equal(t, State{ID: 11, Assigned: true}, s.Current())
	}

	// Cleared on the first frame the body is no longer tracked.
	got, change = s.Select([]skeleton.Body{untracked(0), untracked(11)})
	assert.Nil(t, got)
	assert.Equal(t, Lost, change)
	assert.Equal(t, None, s.Current())
}

func TestSelector_LowerSlotWins(t *testing.T) {
	for run := 0; run < 10; run++ {
		s := NewSelector()
		got, change := s.Select([]skeleton.Body{untracked(0), tracked(200), tracked(100)})
		require.NotNil(t, got)
		assert.Equal(t, uint64(200), got.ID, "slot order, not id order, breaks ties")
		assert.Equal(t, Acquired, change)
	}
}

func TestSelector_KeepsDriverWhenOthersArrive(t *testing.T) {
	s := NewSelector()
	s.Select([]skeleton.Body{untracked(0), tracked(5)})

	// A new body appears in a lower slot; the driver does not change.
	got, change := s.Select([]skeleton.Body{tracked(9), tracked(5)})
	require.NotNil(t, got)
	assert.Equal(t, uint64(5), got.ID)
	assert.Equal(t, Unchanged, change)
}

func TestSelector_DriverMovesSlots(t *testing.T) {
	s := NewSelector()
	s.Select([]skeleton.Body{tracked(5), untracked(0)})

	got, _ := s.Select([]skeleton.Body{tracked(9), untracked(0), tracked(5)})
	require.NotNil(t, got)
	assert.Equal(t, uint64(5), got.ID, "identity is matched, not slot")
}

func TestSelector_ReacquiresNextFrame(t *testing.T) {
	s := NewSelector()
	s.Select([]skeleton.Body{tracked(1), tracked(2)})

	// Driver 1 leaves while 2 stays: the frame of the loss has no driver.
	got, change := s.Select([]skeleton.Body{untracked(1), tracked(2)})
	assert.Nil(t, got)
	assert.Equal(t, Lost, change)

	got, change = s.Select([]skeleton.Body{untracked(1), tracked(2)})
	require.NotNil(t, got)
	assert.Equal(t, uint64(2), got.ID)
	assert.Equal(t, Acquired, change)
}

func TestSelector_UntrackedBodyWithDriverIDDoesNotMatch(t *testing.T) {
	s := NewSelector()
	s.Select([]skeleton.Body{tracked(3)})

	// Slot reused with stale id but not tracked.
	got, change := s.Select([]skeleton.Body{untracked(3)})
	assert.Nil(t, got)
	assert.Equal(t, Lost, change)
}

func TestSelector_AllSlotsEmpty(t *testing.T) {
	s := NewSelector()
	s.Select([]skeleton.Body{tracked(3)})

	got, change := s.Select(nil)
	assert.Nil(t, got)
	assert.Equal(t, Lost, change)

	got, change = s.Select(nil)
	assert.Nil(t, got)
	assert.Equal(t, Unchanged, change)
}

func TestSelector_ReturnsSliceElement(t *testing.T) {
	s := NewSelector()
	bodies := []skeleton.Body{untracked(0), tracked(4)}

	got, _ := s.Select(bodies)
	require.NotNil(t, got)
	assert.Same(t, &bodies[1], got)
}

func TestSelector_Reset(t *testing.T) {
	s := NewSelector()
	s.Select([]skeleton.Body{tracked(3)})
	s.Reset()
	assert.Equal(t, None, s.Current())
}

func TestChange_String(t *testing.T) {
	assert.Equal(t, "acquired", Acquired.String())
	assert.Equal(t, "lost", Lost.String())
	assert.Equal(t, "unchanged", Unchanged.String())
}
