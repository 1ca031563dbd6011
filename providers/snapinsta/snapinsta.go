// Package snapinsta resolves Instagram posts, reels and IGTV videos
// through the instagramdownloader.net API.
package snapinsta

import (
	"encoding/json"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

const endpoint = "https://api.instagramdownloader.net/download?url={url}"

type media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type response struct {
	Title string  `json:"title"`
	Media []media `json:"media"`
}

func normalize(body []byte) generic.Option[clipsave.VideoDescriptor] {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return generic.None[clipsave.VideoDescriptor]()
	}
	for _, m := range resp.Media {
		if m.Type != "" && m.Type != "video" {
			continue
		}
		if m.URL == "" {
			continue
		}
		return generic.Some(clipsave.VideoDescriptor{
			Title:       resp.Title,
			DownloadURL: m.URL,
		})
	}
	return generic.None[clipsave.VideoDescriptor]()
}

func New() clipsave.Provider {
	return clipsave.HTTPProvider{
		Name:             "snapinsta",
		Platform:         clipsave.PlatformInstagram,
		EndpointTemplate: endpoint,
		Normalize:        normalize,
	}.Provider()
}

func init() {
	clipsave.DefaultProviderRegistry.MustAdd(New())
}
