// Package vidfetch resolves YouTube videos through the
// youtubedownloader.com API. It is a fallback behind the native
// resolver, for videos the native client cannot handle.
package vidfetch

import (
	"encoding/json"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

const endpoint = "https://api.youtubedownloader.com/video?url={url}"

type response struct {
	Title       string  `json:"title"`
	DownloadURL string  `json:"downloadUrl"`
	Size        float64 `json:"size"`
}

func normalize(body []byte) generic.Option[clipsave.VideoDescriptor] {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil || resp.DownloadURL == "" {
		return generic.None[clipsave.VideoDescriptor]()
	}
	d := clipsave.VideoDescriptor{
		Title:       resp.Title,
		DownloadURL: resp.DownloadURL,
	}
	if resp.Size > 0 {
		d.SizeMB = generic.Some(resp.Size)
	}
	return generic.Some(d)
}

func New() clipsave.Provider {
	return clipsave.HTTPProvider{
		Name:             "vidfetch",
		Platform:         clipsave.PlatformYouTube,
		Priority:         10,
		EndpointTemplate: endpoint,
		Normalize:        normalize,
	}.Provider()
}

func init() {
	clipsave.DefaultProviderRegistry.MustAdd(New())
}
