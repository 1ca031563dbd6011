// Package session drives one user's resolve-then-save workflow as a
// strictly sequential state machine: at most one resolution or download
// is in flight at any time.
package session

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
	"github.com/clipsave/clipsave/internal/history"
	"github.com/clipsave/clipsave/internal/pubsub"
)

type Config struct {
	Resolver   *clipsave.Resolver
	Dispatcher *clipsave.Dispatcher
	History    history.Store
	Client     *http.Client
	// TargetDir is where downloaded files are written.
	TargetDir string
	// ProgressCallback receives (downloaded, expected) byte counts during
	// a download.
	ProgressCallback func(downloaded int, expected int)
}

type submitRequest struct {
	url   string
	reply chan error
}

// A Session owns one state machine instance; all transitions happen on
// its run goroutine, so they are strictly sequential.
type Session struct {
	config    Config
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *zap.SugaredLogger

	state  State
	events pubsub.Publisher[Event]

	done            chan struct{}
	submitCommand   chan submitRequest
	downloadCommand chan chan error
	resetCommand    chan chan error
	stateCommand    chan chan generic.Result[State]

	// Completion channels for the phase currently running; nil otherwise.
	resolveDone  <-chan generic.Result[clipsave.VideoDescriptor]
	dispatchDone <-chan generic.Result[clipsave.DispatchOutcome]
}

func New(config Config, ctx context.Context) (*Session, error) {
	if config.Resolver == nil {
		config.Resolver = clipsave.NewResolver(clipsave.ResolverConfig{Client: config.Client})
	}
	if config.Dispatcher == nil {
		config.Dispatcher = clipsave.NewDispatcher(clipsave.DispatcherConfig{Client: config.Client})
	}
	if config.History == nil {
		config.History = history.NewMemoryStore()
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.TargetDir == "" {
		config.TargetDir = "."
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		config:    config,
		ctx:       ctx,
		ctxCancel: cancel,
		log:       zap.S().Named("session"),

		state:  State{Phase: PhaseIdle},
		events: pubsub.NewPublisherBufSize[Event](eventBufSize),

		done:            make(chan struct{}),
		submitCommand:   make(chan submitRequest),
		downloadCommand: make(chan chan error),
		resetCommand:    make(chan chan error),
		stateCommand:    make(chan chan generic.Result[State]),
	}
	go s.run()
	return s, nil
}

// eventBufSize gives subscribers enough headroom that a full workflow's
// events fit without the run loop blocking on a slow consumer.
const eventBufSize = 16

// Subscribe returns a receiver for all session events. Consumers must
// drain the receiver until it closes.
func (s *Session) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	return s.events.SubscribeBufSize(eventBufSize)
}

// SubscribePhase returns a receiver that only sees PhaseChanged events.
func (s *Session) SubscribePhase() (pubsub.ReceiverCloser[Event], error) {
	ch := pubsub.NewChannel[Event](eventBufSize)
	filtered := pubsub.NewFilteredSender[Event](ch, func(e Event) bool {
		_, ok := e.(PhaseChanged)
		return ok
	})
	if err := s.events.AddSubscriber(filtered, true); err != nil {
		return nil, err
	}
	return ch, nil
}

// Close shuts the session down; in-flight work has its result ignored.
func (s *Session) Close() {
	s.ctxCancel()
	<-s.done
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}
