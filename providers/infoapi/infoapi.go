// Package infoapi resolves videos for any platform through a
// download-info endpoint, usually the relay daemon's /api/download
// route. It registers at the lowest priority so platform-specific
// providers are always tried first.
package infoapi

import (
	"encoding/json"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

const (
	// DefaultEndpoint points at a locally running relay daemon.
	DefaultEndpoint = "http://localhost:8750/api/download"
	defaultQuality  = "720"
)

type response struct {
	Success     bool   `json:"success"`
	Title       string `json:"title"`
	DownloadURL string `json:"download_url"`
	Quality     string `json:"quality"`
	Platform    string `json:"platform"`
	NoWatermark bool   `json:"no_watermark"`
}

func normalize(body []byte) generic.Option[clipsave.VideoDescriptor] {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil || !resp.Success || resp.DownloadURL == "" {
		return generic.None[clipsave.VideoDescriptor]()
	}
	return generic.Some(clipsave.VideoDescriptor{
		Title:       resp.Title,
		DownloadURL: resp.DownloadURL,
		NoWatermark: resp.NoWatermark,
	})
}

// New builds one download-info provider for the named platform. A
// different endpoint can be supplied through configuration; empty means
// DefaultEndpoint.
func New(platform clipsave.Platform, endpoint string) clipsave.Provider {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return clipsave.HTTPProvider{
		Name:             "infoapi-" + string(platform),
		Platform:         platform,
		Priority:         clipsave.PriorityLowest,
		EndpointTemplate: endpoint,
		Method:           "POST",
		Quality:          defaultQuality,
		Normalize:        normalize,
	}.Provider()
}

func init() {
	for _, platform := range []clipsave.Platform{
		clipsave.PlatformTikTok,
		clipsave.PlatformYouTube,
		clipsave.PlatformInstagram,
	} {
		clipsave.DefaultProviderRegistry.MustAdd(New(platform, ""))
	}
}
