package types

// State is the ownership state of a packet store.
type State uint8

const (
	// StateOwnedMutable: the packet owns its store and may grow and release it.
	StateOwnedMutable State = iota
	// StateBorrowedReadOnly: the store belongs to someone else; reads only.
	StateBorrowedReadOnly
	// StateSent: the store was handed to a transport which now releases it.
	StateSent
	// StateReleased: the store was dropped early.
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateOwnedMutable:
		return "owned-mutable"
	case StateBorrowedReadOnly:
		return "borrowed-readonly"
	case StateSent:
		return "sent"
	case StateReleased:
		return "released"
	default:
		return "invalid"
	}
}

var transitions = [4][4]bool{
	StateOwnedMutable:     {StateSent: true, StateReleased: true},
	StateBorrowedReadOnly: {StateOwnedMutable: true, StateReleased: true},
	StateSent:             {StateOwnedMutable: true, StateReleased: true},
	StateReleased:         {StateOwnedMutable: true},
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	if s > StateReleased || next > StateReleased {
		return false
	}
	return transitions[s][next]
}

// Mutable reports whether fields may be written in state s.
func (s State) Mutable() bool {
	return s == StateOwnedMutable
}

// Phase tracks how far a packet has been built or reassembled.
type Phase uint8

const (
	// PhaseBuilding marks a packet created for writing fields.
	PhaseBuilding Phase = iota
	PhaseEmpty
	PhaseAwaitingHeader
	PhaseAwaitingBody
	PhaseParsed
	PhaseInvalid
)

func (p Phase) String() string {
	switch p {
	case PhaseBuilding:
		return "building"
	case PhaseEmpty:
		return "empty"
	case PhaseAwaitingHeader:
		return "awaiting-header"
	case PhaseAwaitingBody:
		return "awaiting-body"
	case PhaseParsed:
		return "parsed"
	case PhaseInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Assembling reports whether Append may still consume bytes.
func (p Phase) Assembling() bool {
	return p == PhaseEmpty || p == PhaseAwaitingHeader || p == PhaseAwaitingBody
}
