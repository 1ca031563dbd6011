package clipsave

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/clipsave/clipsave/generic"
	"github.com/clipsave/clipsave/internal/sync_"
)

const DefaultProviderTimeout = 15 * time.Second

type ResolverConfig struct {
	Registry *ProviderRegistry
	Client   *http.Client
	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration
	// DemoMode substitutes a synthetic placeholder descriptor when every
	// provider fails, instead of returning ErrResolutionFailed. Off in
	// production; exists for offline demos only.
	DemoMode bool
}

// A Resolver turns a raw video URL into a canonical VideoDescriptor by
// trying the platform's providers in priority order.
type Resolver struct {
	config ResolverConfig
	busy   sync_.Event
	log    *zap.SugaredLogger
}

func NewResolver(config ResolverConfig) *Resolver {
	if config.Registry == nil {
		config.Registry = &DefaultProviderRegistry
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = DefaultProviderTimeout
	}
	return &Resolver{
		config: config,
		log:    zap.S().Named("resolver"),
	}
}

// Resolve classifies the URL and queries the platform's providers
// sequentially in ascending priority order, returning the first usable
// descriptor. At most one resolution may be in flight per Resolver; a
// concurrent call fails with ErrAlreadyInProgress without touching any
// provider.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (VideoDescriptor, error) {
	if !r.busy.Set() {
		return VideoDescriptor{}, ErrAlreadyInProgress
	}
	defer r.busy.Clear()

	rawURL = strings.TrimSpace(rawURL)
	c := Classify(rawURL)
	if !c.Valid {
		if c.Platform == PlatformUnknown {
			return VideoDescriptor{}, ErrInvalidURL
		}
		return VideoDescriptor{}, fmt.Errorf("%w: not a recognised %s URL", ErrInvalidURL, c.Platform.DisplayName())
	}
	providers := r.config.Registry.ProvidersFor(c.Platform)
	if len(providers) == 0 {
		return VideoDescriptor{}, fmt.Errorf("%w: no providers for %s", ErrUnsupportedPlatform, c.Platform)
	}

	var softFailures error
	for _, p := range providers {
		d, err := r.tryProvider(ctx, p, rawURL)
		if err != nil {
			// Soft failure: log it, remember it, move on to the next provider.
			r.log.Debugw("provider failed", "provider", p.Name, "error", err)
			softFailures = multierror.Append(softFailures, multierror.Prefix(err, fmt.Sprintf("[%v]", p.Name)))
			continue
		}
		d.SourceURL = rawURL
		d.Platform = c.Platform
		if d.Title == "" {
			d.Title = PlaceholderTitle(c.Platform)
		}
		r.log.Infow("resolved", "provider", p.Name, "title", d.Title)
		return d, nil
	}

	if r.config.DemoMode {
		r.log.Warnw("all providers failed, using demo placeholder", "platform", c.Platform)
		return demoDescriptor(rawURL, c.Platform), nil
	}
	return VideoDescriptor{}, fmt.Errorf("%w: %v", ErrResolutionFailed, softFailures)
}

func (r *Resolver) tryProvider(ctx context.Context, p *Provider, rawURL string) (VideoDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.config.ProviderTimeout)
	defer cancel()
	opt, err := p.Resolve(ctx, r.config.Client, rawURL)
	if err != nil {
		return VideoDescriptor{}, err
	}
	d, ok := opt.Parts()
	if !ok {
		return VideoDescriptor{}, fmt.Errorf("no playable video in response")
	}
	return d, nil
}

var demoTitles = map[Platform][]string{
	PlatformTikTok:    {"Trending TikTok dance", "Funny animal clip", "Everyday life hack"},
	PlatformYouTube:   {"Tech review", "Music video", "Tutorial"},
	PlatformInstagram: {"Scenic reel", "Recipe idea", "Fashion showcase"},
}

// demoDescriptor recreates the offline placeholder the demo mode shows:
// random title from the platform pool, plausible duration/size, and the
// source URL standing in as the download link.
func demoDescriptor(rawURL string, platform Platform) VideoDescriptor {
	titles := demoTitles[platform]
	if len(titles) == 0 {
		titles = demoTitles[PlatformTikTok]
	}
	return VideoDescriptor{
		SourceURL:   rawURL,
		Platform:    platform,
		Title:       titles[rand.Intn(len(titles))],
		Duration:    generic.Some(rand.Intn(3*60 + 60)),
		SizeMB:      generic.Some(float64(rand.Intn(50) + 10)),
		DownloadURL: rawURL,
		NoWatermark: true,
	}
}
