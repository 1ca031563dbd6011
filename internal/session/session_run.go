package session

import (
	"errors"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/async"
	"github.com/clipsave/clipsave/generic"
	"github.com/clipsave/clipsave/internal/history"
)

// ErrNotReady indicates a download was requested with no resolved video.
var ErrNotReady = errors.New("no resolved video to download")

func (s *Session) run() {
	defer close(s.done)
	defer s.events.Close()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ch := <-s.stateCommand:
			select {
			case ch <- generic.Ok(s.state):
			case <-s.ctx.Done():
			}
		case req := <-s.submitCommand:
			req.reply <- s.submit(req.url)
		case ch := <-s.downloadCommand:
			ch <- s.startDownload()
		case ch := <-s.resetCommand:
			ch <- s.reset()
		case result := <-s.resolveDone:
			s.resolveDone = nil
			s.finishResolve(result)
		case result := <-s.dispatchDone:
			s.dispatchDone = nil
			s.finishDispatch(result)
		}
	}
}

func (s *Session) submit(url string) error {
	if s.state.Phase.IsRunning() {
		return clipsave.ErrAlreadyInProgress
	}
	// A new submission from Ready or Failed implicitly resets the session.
	s.setPhase(PhaseValidating, State{Phase: PhaseValidating})

	c := clipsave.Classify(url)
	if !c.Valid {
		s.fail(clipsave.ErrInvalidURL)
		return nil
	}

	s.setPhase(PhaseResolving, State{Phase: PhaseResolving})
	s.resolveDone = async.RunResult(func() (clipsave.VideoDescriptor, error) {
		return s.config.Resolver.Resolve(s.ctx, url)
	})
	return nil
}

func (s *Session) finishResolve(result generic.Result[clipsave.VideoDescriptor]) {
	if s.state.Phase != PhaseResolving {
		// Session was reset while resolving; drop the stale result.
		return
	}
	d, err := result.Parts()
	if err != nil {
		s.fail(err)
		return
	}
	s.setPhase(PhaseReady, State{Phase: PhaseReady, Descriptor: d})
	s.events.Send(Resolved{sessionEvent{s.state}, d})
}

func (s *Session) startDownload() error {
	if s.state.Phase.IsRunning() {
		return clipsave.ErrAlreadyInProgress
	}
	if s.state.Phase != PhaseReady {
		return ErrNotReady
	}
	descriptor := s.state.Descriptor
	s.setPhase(PhaseDownloading, State{Phase: PhaseDownloading, Descriptor: descriptor})
	s.dispatchDone = async.RunResult(func() (clipsave.DispatchOutcome, error) {
		sink, err := clipsave.NewDownloadBuilder().
			WithContext(s.ctx).
			WithClient(s.config.Client).
			WithTargetDir(s.config.TargetDir).
			WithProgressCallback(s.config.ProgressCallback).
			Build()
		if err != nil {
			return clipsave.DispatchOutcome{}, err
		}
		defer sink.Close()
		return s.config.Dispatcher.Dispatch(s.ctx, descriptor, sink)
	})
	return nil
}

func (s *Session) finishDispatch(result generic.Result[clipsave.DispatchOutcome]) {
	if s.state.Phase != PhaseDownloading {
		return
	}
	outcome, err := result.Parts()
	if err != nil {
		s.fail(err)
		return
	}
	if err := s.config.History.Append(history.NewEntry(outcome.Descriptor)); err != nil {
		// History is best-effort; a persistence hiccup must not fail the download.
		s.log.Warnw("failed to append history entry", "error", err)
	}
	s.setPhase(PhaseReady, State{Phase: PhaseReady, Descriptor: outcome.Descriptor})
	s.events.Send(Saved{sessionEvent{s.state}, outcome})
}

func (s *Session) reset() error {
	if s.state.Phase.IsRunning() {
		return clipsave.ErrAlreadyInProgress
	}
	s.setPhase(PhaseIdle, State{Phase: PhaseIdle})
	return nil
}

func (s *Session) fail(err error) {
	s.setPhase(PhaseFailed, State{Phase: PhaseFailed, LastError: err.Error()})
	s.events.Send(Failed{sessionEvent{s.state}, err})
}

func (s *Session) setPhase(to Phase, next State) {
	old := s.state.Phase
	if old == to {
		s.state = next
		return
	}
	if !CanTransition(old, to) {
		s.log.Warnw("illegal phase transition", "from", old, "to", to)
	}
	s.state = next
	s.events.Send(PhaseChanged{sessionEvent{s.state}, old, to})
}
