package clipsave

import (
	"regexp"
	"strings"
)

// Platform identifies the originating video service for a URL.
type Platform string

const (
	PlatformUnknown   Platform = "unknown"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
)

// detectionOrder is the fixed order hosts are checked in; the first match
// wins. Host sets are disjoint in practice, so ordering only matters for
// malformed input.
var detectionOrder = []Platform{PlatformTikTok, PlatformYouTube, PlatformInstagram}

var platformHosts = map[Platform][]string{
	PlatformTikTok:    {"tiktok.com"},
	PlatformYouTube:   {"youtube.com", "youtu.be"},
	PlatformInstagram: {"instagram.com", "instagr.am"},
}

// Per-platform URL shape patterns. A URL can match a platform's host and
// still fail its expected path shape.
var platformShapes = map[Platform][]*regexp.Regexp{
	PlatformTikTok: {
		regexp.MustCompile(`tiktok\.com/.*/video/\d+`),
		regexp.MustCompile(`vt\.tiktok\.com/[A-Za-z0-9]+/`),
		regexp.MustCompile(`vm\.tiktok\.com/[A-Za-z0-9]+/`),
	},
	PlatformYouTube: {
		regexp.MustCompile(`youtube\.com/watch\?v=[\w-]+`),
		regexp.MustCompile(`youtu\.be/[\w-]+`),
	},
	PlatformInstagram: {
		regexp.MustCompile(`instagram\.com/(p|reel|tv)/[\w-]+`),
		regexp.MustCompile(`instagr\.am/(p|reel|tv)/[\w-]+`),
	},
}

var platformDisplayNames = map[Platform]string{
	PlatformTikTok:    "TikTok",
	PlatformYouTube:   "YouTube",
	PlatformInstagram: "Instagram",
}

// DisplayName returns a human-readable name for the platform.
func (p Platform) DisplayName() string {
	if name, ok := platformDisplayNames[p]; ok {
		return name
	}
	return "Video"
}

// A Classification is the verdict of Classify for a single raw URL.
type Classification struct {
	Platform Platform
	// Valid is true when the URL matches one of the platform's expected
	// path shapes, not merely its host.
	Valid bool
}

// Classify maps a raw input string to a platform and a syntactic validity
// verdict. It is a pure function: no network access, no state, never
// panics on malformed input.
func Classify(raw string) Classification {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Classification{Platform: PlatformUnknown}
	}
	c := Classification{Platform: detectPlatform(raw)}
	if c.Platform == PlatformUnknown {
		return c
	}
	for _, shape := range platformShapes[c.Platform] {
		if shape.MatchString(raw) {
			c.Valid = true
			break
		}
	}
	return c
}

func detectPlatform(raw string) Platform {
	for _, p := range detectionOrder {
		for _, host := range platformHosts[p] {
			if strings.Contains(raw, host) {
				return p
			}
		}
	}
	return PlatformUnknown
}
