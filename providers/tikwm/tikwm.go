// Package tikwm resolves TikTok videos through the tikwm.com API.
package tikwm

import (
	"encoding/json"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

const endpoint = "https://www.tikwm.com/api/?url={url}"

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Title    string  `json:"title"`
		Play     string  `json:"play"`
		HDPlay   string  `json:"hdplay"`
		WMPlay   string  `json:"wmplay"`
		Duration int     `json:"duration"`
		Size     float64 `json:"size"`
	} `json:"data"`
}

func normalize(body []byte) generic.Option[clipsave.VideoDescriptor] {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil || resp.Code != 0 {
		return generic.None[clipsave.VideoDescriptor]()
	}
	// Prefer the HD no-watermark rendition, then the standard one.
	link := resp.Data.HDPlay
	noWatermark := true
	if link == "" {
		link = resp.Data.Play
	}
	if link == "" {
		link = resp.Data.WMPlay
		noWatermark = false
	}
	if link == "" {
		return generic.None[clipsave.VideoDescriptor]()
	}
	d := clipsave.VideoDescriptor{
		Title:       resp.Data.Title,
		DownloadURL: link,
		NoWatermark: noWatermark,
	}
	if resp.Data.Duration > 0 {
		d.Duration = generic.Some(resp.Data.Duration)
	}
	if resp.Data.Size > 0 {
		d.SizeMB = generic.Some(resp.Data.Size / (1024 * 1024))
	}
	return generic.Some(d)
}

func New() clipsave.Provider {
	return clipsave.HTTPProvider{
		Name:             "tikwm",
		Platform:         clipsave.PlatformTikTok,
		EndpointTemplate: endpoint,
		Normalize:        normalize,
	}.Provider()
}

func init() {
	clipsave.DefaultProviderRegistry.MustAdd(New())
}
