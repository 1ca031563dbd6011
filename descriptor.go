package clipsave

import (
	"fmt"

	"github.com/clipsave/clipsave/generic"
)

// A VideoDescriptor is the canonical, normalized result of resolving a
// video URL, regardless of which provider produced it.
type VideoDescriptor struct {
	// SourceURL is the original input, exactly as submitted.
	SourceURL string
	Platform  Platform
	// Title is never empty on a resolved descriptor; PlaceholderTitle is
	// substituted when a provider has no title to offer.
	Title string
	// Duration in whole seconds, if known.
	Duration generic.Option[int]
	// SizeMB is informational only; providers report wildly approximate values.
	SizeMB generic.Option[float64]
	// DownloadURL points at retrievable media; empty means "no direct link".
	DownloadURL string
	NoWatermark bool
}

func (d VideoDescriptor) String() string {
	return fmt.Sprintf("%s [%s]", d.Title, d.Platform)
}

// HasDownloadLink reports whether the descriptor carries a direct media link.
func (d VideoDescriptor) HasDownloadLink() bool {
	return d.DownloadURL != ""
}

// PlaceholderTitle is the platform-generic display title used when a
// provider response carries no usable title.
func PlaceholderTitle(p Platform) string {
	return p.DisplayName() + " video"
}

// FormatDuration renders a duration in seconds the way the history view
// shows it: "45 sec" under a minute, "2:05" otherwise.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	if minutes == 0 {
		return fmt.Sprintf("%d sec", seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds%60)
}
