package clipsave

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/clipsave/clipsave/internal/sync_"
)

const DefaultProbeTimeout = 5 * time.Second

// Strategy names reported in a DispatchOutcome.
const (
	StrategyDirect  = "direct"
	StrategyProxy   = "proxy"
	StrategyHandoff = "handoff"
)

// A DispatchOutcome reports which strategy saved the video.
type DispatchOutcome struct {
	Strategy   string
	Descriptor VideoDescriptor
}

// A Strategy is one way of getting the descriptor's bytes onto disk (or
// into the user's hands). A failed attempt is non-fatal; the dispatcher
// advances to the next strategy.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, d VideoDescriptor, sink Download) error
}

// OpenFunc hands a URL to an external browsing context. It should return
// once the context has been opened; no completion confirmation is possible.
type OpenFunc = func(url string) error

type DispatcherConfig struct {
	Client *http.Client
	// ProxyURL is the base URL of the relay daemon for the proxied-fetch
	// strategy; empty disables that strategy.
	ProxyURL string
	// ProbeTimeout bounds the direct strategy's existence probe.
	ProbeTimeout time.Duration
	// Opener implements the new-tab handoff strategy; nil disables it.
	Opener OpenFunc
	// Strategies overrides the default strategy list (mainly for tests).
	Strategies []Strategy
}

// A Dispatcher saves a resolved video by trying its strategies in fixed
// priority order, stopping at the first success.
type Dispatcher struct {
	strategies []Strategy
	busy       sync_.Event
	log        *zap.SugaredLogger
}

func NewDispatcher(config DispatcherConfig) *Dispatcher {
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}
	strategies := config.Strategies
	if strategies == nil {
		strategies = []Strategy{
			&directStrategy{client: config.Client, probeTimeout: config.ProbeTimeout},
			&proxyStrategy{client: config.Client, proxyURL: config.ProxyURL},
			&handoffStrategy{open: config.Opener},
		}
	}
	return &Dispatcher{
		strategies: strategies,
		log:        zap.S().Named("dispatcher"),
	}
}

// Dispatch attempts each strategy in order against the descriptor. At
// most one dispatch may be in flight per Dispatcher. No partial file
// survives a failed dispatch: a strategy only starts writing once its
// source responded successfully.
func (dp *Dispatcher) Dispatch(ctx context.Context, d VideoDescriptor, sink Download) (DispatchOutcome, error) {
	if !dp.busy.Set() {
		return DispatchOutcome{}, ErrAlreadyInProgress
	}
	defer dp.busy.Clear()

	var softFailures error
	for _, s := range dp.strategies {
		if err := s.Attempt(ctx, d, sink); err != nil {
			dp.log.Debugw("strategy failed", "strategy", s.Name(), "error", err)
			softFailures = multierror.Append(softFailures, multierror.Prefix(err, fmt.Sprintf("[%v]", s.Name())))
			continue
		}
		dp.log.Infow("saved", "strategy", s.Name(), "title", d.Title)
		return DispatchOutcome{Strategy: s.Name(), Descriptor: d}, nil
	}
	return DispatchOutcome{}, fmt.Errorf("%w: %v", ErrDownloadFailed, softFailures)
}

// directStrategy probes the descriptor's direct link and streams it into
// the sink as a save-as-file action.
type directStrategy struct {
	client       *http.Client
	probeTimeout time.Duration
}

func (s *directStrategy) Name() string { return StrategyDirect }

func (s *directStrategy) Attempt(ctx context.Context, d VideoDescriptor, sink Download) error {
	if !d.HasDownloadLink() {
		return fmt.Errorf("no direct download link")
	}
	if sink == nil {
		return fmt.Errorf("no download sink")
	}
	if err := s.probe(ctx, d.DownloadURL); err != nil {
		return err
	}
	return sink.SaveURL(FilenameFromURL(d.DownloadURL), d.DownloadURL)
}

// probe is a lightweight existence check so we don't create a target
// file for a link that is already dead.
func (s *directStrategy) probe(ctx context.Context, mediaURL string) error {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe failed: status %d", resp.StatusCode)
	}
	return nil
}

// proxyStrategy retrieves the bytes through the relay daemon's fetch
// endpoint, bypassing origins that refuse direct retrieval.
type proxyStrategy struct {
	client   *http.Client
	proxyURL string
}

func (s *proxyStrategy) Name() string { return StrategyProxy }

func (s *proxyStrategy) Attempt(ctx context.Context, d VideoDescriptor, sink Download) error {
	if s.proxyURL == "" {
		return fmt.Errorf("no proxy configured")
	}
	if sink == nil {
		return fmt.Errorf("no download sink")
	}
	mediaURL := d.DownloadURL
	if mediaURL == "" {
		mediaURL = d.SourceURL
	}
	fetchURL := fmt.Sprintf("%s/api/fetch?url=%s", s.proxyURL, url.QueryEscape(mediaURL))
	req, err := http.NewRequest(http.MethodGet, fetchURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return sink.SaveHTTPRequest(FilenameFromURL(mediaURL), req)
}

// handoffStrategy opens the URL in an external browsing context and lets
// the user complete the save manually. Considered successful as soon as
// the context opens.
type handoffStrategy struct {
	open OpenFunc
}

func (s *handoffStrategy) Name() string { return StrategyHandoff }

func (s *handoffStrategy) Attempt(_ context.Context, d VideoDescriptor, _ Download) error {
	if s.open == nil {
		return fmt.Errorf("no opener configured")
	}
	target := d.DownloadURL
	if target == "" {
		target = d.SourceURL
	}
	if target == "" {
		return fmt.Errorf("nothing to open")
	}
	if err := s.open(target); err != nil {
		return fmt.Errorf("failed to open: %w", err)
	}
	return nil
}
