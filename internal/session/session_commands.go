package session

import (
	"errors"

	"github.com/clipsave/clipsave/generic"
)

var ErrSessionClosed = errors.New("session closed")

// Submit starts the resolve workflow for a URL. Returns
// clipsave.ErrAlreadyInProgress if a resolution or download is in flight.
// Validation/resolution failures arrive as events, not as this return
// value.
func (s *Session) Submit(url string) error {
	req := submitRequest{url: url, reply: make(chan error, 1)}
	select {
	case s.submitCommand <- req:
		select {
		case err := <-req.reply:
			return err
		case <-s.ctx.Done():
			return ErrSessionClosed
		}
	case <-s.ctx.Done():
		return ErrSessionClosed
	}
}

// StartDownload dispatches the currently resolved descriptor.
func (s *Session) StartDownload() error {
	return s.command(s.downloadCommand)
}

// Reset returns a settled session to Idle, clearing descriptor and error.
func (s *Session) Reset() error {
	return s.command(s.resetCommand)
}

// State returns a snapshot of the session's current state.
func (s *Session) State() (State, error) {
	ch := make(chan generic.Result[State], 1)
	select {
	case s.stateCommand <- ch:
		select {
		case result := <-ch:
			return result.Parts()
		case <-s.ctx.Done():
			return generic.Err[State](ErrSessionClosed).Parts()
		}
	case <-s.ctx.Done():
		return generic.Err[State](ErrSessionClosed).Parts()
	}
}

func (s *Session) command(cmd chan chan error) error {
	ch := make(chan error, 1)
	select {
	case cmd <- ch:
		select {
		case err := <-ch:
			return err
		case <-s.ctx.Done():
			return ErrSessionClosed
		}
	case <-s.ctx.Done():
		return ErrSessionClosed
	}
}
