package session

import "github.com/clipsave/clipsave"

// An Event is published whenever the session's observable state changes.
type Event interface {
	// State the session was in immediately after the event.
	State() State
}

type sessionEvent struct {
	state State
}

func (e sessionEvent) State() State {
	return e.state
}

// PhaseChanged is published on every phase transition.
type PhaseChanged struct {
	sessionEvent
	Old Phase
	New Phase
}

// Resolved is published when resolution produced a descriptor and the
// session entered Ready.
type Resolved struct {
	sessionEvent
	Descriptor clipsave.VideoDescriptor
}

// Saved is published when a download strategy succeeded and the history
// entry was appended.
type Saved struct {
	sessionEvent
	Outcome clipsave.DispatchOutcome
}

// Failed is published when the session enters the Failed phase.
type Failed struct {
	sessionEvent
	Err error
}
