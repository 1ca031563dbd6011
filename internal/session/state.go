package session

import (
	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

// Phase is the UI-facing processing state of a session.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseValidating  Phase = "validating"
	PhaseResolving   Phase = "resolving"
	PhaseReady       Phase = "ready"
	PhaseDownloading Phase = "downloading"
	PhaseFailed      Phase = "failed"
)

var runningPhases = generic.NewSet(PhaseValidating, PhaseResolving, PhaseDownloading)

// IsRunning returns true while some active process is driving the
// session towards its next settled phase.
func (p Phase) IsRunning() bool {
	return runningPhases.Contains(p)
}

// transitions is the legal phase graph; anything not listed is rejected.
var transitions = map[Phase][]Phase{
	PhaseIdle:        {PhaseValidating},
	PhaseValidating:  {PhaseResolving, PhaseFailed},
	PhaseResolving:   {PhaseReady, PhaseFailed},
	PhaseReady:       {PhaseDownloading, PhaseValidating, PhaseIdle},
	PhaseDownloading: {PhaseReady, PhaseFailed},
	PhaseFailed:      {PhaseValidating, PhaseIdle},
}

// CanTransition reports whether moving from one phase to another is legal.
func CanTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// State is a snapshot of a session at one point in time.
type State struct {
	Phase Phase
	// Descriptor is meaningful only in Ready and Downloading.
	Descriptor clipsave.VideoDescriptor
	// LastError is set only in Failed.
	LastError string
}
