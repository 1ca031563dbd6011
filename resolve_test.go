package clipsave

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/clipsave/clipsave/generic"
)

const tiktokURL = "https://www.tiktok.com/@someuser/video/1234567890123456789"

func stubResolve(d VideoDescriptor, err error) ResolveFunc {
	return func(_ context.Context, _ *http.Client, _ string) (generic.Option[VideoDescriptor], error) {
		if err != nil {
			return generic.None[VideoDescriptor](), err
		}
		return generic.Some(d), nil
	}
}

func countingResolve(calls *int, d VideoDescriptor, err error) ResolveFunc {
	inner := stubResolve(d, err)
	return func(ctx context.Context, client *http.Client, url string) (generic.Option[VideoDescriptor], error) {
		*calls++
		return inner(ctx, client, url)
	}
}

func TestResolveFirstProviderWins(t *testing.T) {
	assert := assert_.New(t)

	var first, second int
	var registry ProviderRegistry
	registry.MustCreate("first", PlatformTikTok, countingResolve(&first, VideoDescriptor{Title: "from first", DownloadURL: "https://cdn.example.com/a.mp4"}, nil))
	registry.MustCreatePriority("second", PlatformTikTok, countingResolve(&second, VideoDescriptor{Title: "from second"}, nil), 10)

	r := NewResolver(ResolverConfig{Registry: &registry})
	d, err := r.Resolve(context.Background(), tiktokURL)
	assert.NoError(err)
	assert.Equal("from first", d.Title)
	assert.Equal(tiktokURL, d.SourceURL)
	assert.Equal(PlatformTikTok, d.Platform)
	assert.Equal(1, first)
	assert.Equal(0, second)
}

func TestResolveFallsBackInPriorityOrder(t *testing.T) {
	assert := assert_.New(t)

	var registry ProviderRegistry
	registry.MustCreate("broken", PlatformTikTok, stubResolve(VideoDescriptor{}, fmt.Errorf("API responded with status: 500")))
	registry.MustCreatePriority("working", PlatformTikTok, stubResolve(VideoDescriptor{Title: "fallback win"}, nil), 10)

	r := NewResolver(ResolverConfig{Registry: &registry})
	d, err := r.Resolve(context.Background(), tiktokURL)
	assert.NoError(err)
	assert.Equal("fallback win", d.Title)
}

func TestResolveEmptyDescriptorIsSoftFailure(t *testing.T) {
	assert := assert_.New(t)

	none := func(_ context.Context, _ *http.Client, _ string) (generic.Option[VideoDescriptor], error) {
		return generic.None[VideoDescriptor](), nil
	}
	var registry ProviderRegistry
	registry.MustCreate("empty", PlatformTikTok, none)
	registry.MustCreatePriority("working", PlatformTikTok, stubResolve(VideoDescriptor{Title: "real"}, nil), 10)

	r := NewResolver(ResolverConfig{Registry: &registry})
	d, err := r.Resolve(context.Background(), tiktokURL)
	assert.NoError(err)
	assert.Equal("real", d.Title)
}

func TestResolveMissingTitleGetsPlaceholder(t *testing.T) {
	assert := assert_.New(t)

	var registry ProviderRegistry
	registry.MustCreate("untitled", PlatformTikTok, stubResolve(VideoDescriptor{DownloadURL: "https://cdn.example.com/a.mp4"}, nil))

	r := NewResolver(ResolverConfig{Registry: &registry})
	d, err := r.Resolve(context.Background(), tiktokURL)
	assert.NoError(err)
	assert.Equal("TikTok video", d.Title)
}

func TestResolveAllProvidersFail(t *testing.T) {
	assert := assert_.New(t)

	var registry ProviderRegistry
	registry.MustCreate("a", PlatformTikTok, stubResolve(VideoDescriptor{}, fmt.Errorf("boom")))
	registry.MustCreatePriority("b", PlatformTikTok, stubResolve(VideoDescriptor{}, fmt.Errorf("bang")), 10)

	r := NewResolver(ResolverConfig{Registry: &registry})
	_, err := r.Resolve(context.Background(), tiktokURL)
	assert.ErrorIs(err, ErrResolutionFailed)
	assert.Contains(err.Error(), "[a]")
	assert.Contains(err.Error(), "[b]")
}

func TestResolveInvalidURL(t *testing.T) {
	assert := assert_.New(t)

	var calls int
	var registry ProviderRegistry
	registry.MustCreate("a", PlatformTikTok, countingResolve(&calls, VideoDescriptor{Title: "x"}, nil))

	r := NewResolver(ResolverConfig{Registry: &registry})
	_, err := r.Resolve(context.Background(), "not a url")
	assert.ErrorIs(err, ErrInvalidURL)
	assert.Equal(0, calls)

	// Known host but not a video link.
	_, err = r.Resolve(context.Background(), "https://www.tiktok.com/@someuser")
	assert.ErrorIs(err, ErrInvalidURL)
	assert.Equal(0, calls)
}

func TestResolveUnsupportedPlatform(t *testing.T) {
	assert := assert_.New(t)

	var registry ProviderRegistry
	registry.MustCreate("yt", PlatformYouTube, stubResolve(VideoDescriptor{Title: "x"}, nil))

	r := NewResolver(ResolverConfig{Registry: &registry})
	_, err := r.Resolve(context.Background(), tiktokURL)
	assert.ErrorIs(err, ErrUnsupportedPlatform)
}

func TestResolveAlreadyInProgress(t *testing.T) {
	assert := assert_.New(t)

	release := make(chan struct{})
	var calls int32
	var registry ProviderRegistry
	registry.MustCreate("slow", PlatformTikTok, func(_ context.Context, _ *http.Client, _ string) (generic.Option[VideoDescriptor], error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return generic.Some(VideoDescriptor{Title: "slow"}), nil
	})

	r := NewResolver(ResolverConfig{Registry: &registry})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d, err := r.Resolve(context.Background(), tiktokURL)
		assert.NoError(err)
		assert.Equal("slow", d.Title)
	}()

	// Wait until the first resolution is inside the provider call.
	for i := 0; atomic.LoadInt32(&calls) == 0 && i < 100; i++ {
		time.Sleep(time.Millisecond)
	}
	_, err := r.Resolve(context.Background(), tiktokURL)
	assert.ErrorIs(err, ErrAlreadyInProgress)
	assert.Equal(int32(1), atomic.LoadInt32(&calls))

	close(release)
	wg.Wait()

	// The guard is released once the first resolution completes.
	d, err := r.Resolve(context.Background(), tiktokURL)
	assert.NoError(err)
	assert.Equal("slow", d.Title)
}

func TestResolveDemoMode(t *testing.T) {
	assert := assert_.New(t)

	var registry ProviderRegistry
	registry.MustCreate("broken", PlatformTikTok, stubResolve(VideoDescriptor{}, fmt.Errorf("offline")))

	r := NewResolver(ResolverConfig{Registry: &registry, DemoMode: true})
	d, err := r.Resolve(context.Background(), tiktokURL)
	assert.NoError(err)
	assert.NotEmpty(d.Title)
	assert.Equal(tiktokURL, d.SourceURL)
	assert.Equal(tiktokURL, d.DownloadURL)
	assert.Equal(PlatformTikTok, d.Platform)
	assert.True(d.NoWatermark)
}
