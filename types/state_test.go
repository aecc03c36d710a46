package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_TransitionTable(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{StateOwnedMutable, StateSent, true},
		{StateOwnedMutable, StateReleased, true},
		{StateOwnedMutable, StateBorrowedReadOnly, false},
		{StateBorrowedReadOnly, StateOwnedMutable, true},
		{StateBorrowedReadOnly, StateSent, false},
		{StateBorrowedReadOnly, StateReleased, true},
		{StateSent, StateOwnedMutable, true},
		{StateSent, StateBorrowedReadOnly, false},
		{StateSent, StateReleased, true},
		{StateReleased, StateOwnedMutable, true},
		{StateReleased, StateSent, false},
		{StateOwnedMutable, StateOwnedMutable, false},
		{State(9), StateReleased, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%v -> %v", tc.from, tc.to)
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "owned-mutable", StateOwnedMutable.String())
	assert.Equal(t, "sent", StateSent.String())
	assert.Equal(t, "invalid", State(42).String())
	assert.True(t, StateOwnedMutable.Mutable())
	assert.False(t, StateBorrowedReadOnly.Mutable())
}

func TestPhase_Assembling(t *testing.T) {
	assert.True(t, PhaseEmpty.Assembling())
	assert.True(t, PhaseAwaitingHeader.Assembling())
	assert.True(t, PhaseAwaitingBody.Assembling())
	assert.False(t, PhaseParsed.Assembling())
	assert.False(t, PhaseInvalid.Assembling())
	assert.False(t, PhaseBuilding.Assembling())
	assert.Equal(t, "awaiting-body", PhaseAwaitingBody.String())
}
