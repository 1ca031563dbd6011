// Package ytnative resolves YouTube videos natively, without a
// third-party API, by talking to YouTube's own player endpoints.
package ytnative

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

func resolve(ctx context.Context, client *http.Client, sourceURL string) (generic.Option[clipsave.VideoDescriptor], error) {
	none := generic.None[clipsave.VideoDescriptor]()
	parsedURL, err := url.Parse(sourceURL)
	if err != nil {
		return none, err
	}
	videoID, err := extractVideoID(parsedURL)
	if err != nil {
		return none, err
	}
	yt := youtube.Client{HTTPClient: client}
	videoDetails, err := yt.GetVideoContext(ctx, *videoID)
	if err != nil {
		return none, fmt.Errorf("failed to get video info: %w", err)
	}
	// TODO: select "highest" quality
	formats := videoDetails.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return none, nil
	}
	format := &formats[0]
	d := clipsave.VideoDescriptor{
		Title:       videoDetails.Title,
		DownloadURL: format.URL,
		NoWatermark: true,
	}
	if seconds := int(videoDetails.Duration.Seconds()); seconds > 0 {
		d.Duration = generic.Some(seconds)
	}
	if format.ContentLength > 0 {
		d.SizeMB = generic.Some(float64(format.ContentLength) / (1024 * 1024))
	}
	return generic.Some(d), nil
}

// Extract video ID from YouTube URL.
//
// Allowed URL formats:
//		http(s?)://(www|m).youtube.com/(watch|details)?v={VIDEO_ID}
//		http(s?)://(www|m).youtube.com/v/{VIDEO_ID}
//		http(s?)://youtu.be/{VIDEO_ID}
func extractVideoID(url *url.URL) (*string, error) {
	var id string
	switch url.Hostname() {
	case "www.youtube.com":
		fallthrough
	case "m.youtube.com":
		fallthrough
	case "youtube.com":
		if strings.HasPrefix(url.Path, "/v/") {
			id = strings.SplitN(url.Path, "/", 3)[2]
		} else if url.Path == "/watch" || url.Path == "/details" {
			if url.Query().Has("v") {
				id = url.Query().Get("v")
			} else {
				return nil, fmt.Errorf("missing ?v= query parameter")
			}
		}
	case "youtu.be":
		id = strings.Trim(url.Path, "/")
	default:
		return nil, fmt.Errorf("unrecognised hostname")
	}
	if id == "" {
		return nil, fmt.Errorf("could not extract video ID")
	}
	return &id, nil
}

func init() {
	clipsave.DefaultProviderRegistry.MustCreate("ytnative", clipsave.PlatformYouTube, resolve)
}
