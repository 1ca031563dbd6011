package clipsave

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestClassifyEmpty(t *testing.T) {
	assert := assert_.New(t)

	for _, raw := range []string{"", "   ", "\t\n"} {
		c := Classify(raw)
		assert.Equal(PlatformUnknown, c.Platform)
		assert.False(c.Valid)
	}
}

func TestClassifyTikTok(t *testing.T) {
	assert := assert_.New(t)

	for _, raw := range []string{
		"https://www.tiktok.com/@someuser/video/1234567890123456789",
		"https://vt.tiktok.com/ZS8abc123/",
		"https://vm.tiktok.com/ZMabcDEF9/",
	} {
		c := Classify(raw)
		assert.Equal(PlatformTikTok, c.Platform, raw)
		assert.True(c.Valid, raw)
	}
}

func TestClassifyYouTube(t *testing.T) {
	assert := assert_.New(t)

	for _, raw := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
	} {
		c := Classify(raw)
		assert.Equal(PlatformYouTube, c.Platform, raw)
		assert.True(c.Valid, raw)
	}
}

func TestClassifyInstagram(t *testing.T) {
	assert := assert_.New(t)

	for _, raw := range []string{
		"https://www.instagram.com/p/Cabc123defG/",
		"https://www.instagram.com/reel/Cabc123defG/",
		"https://www.instagram.com/tv/Cabc123defG/",
		"https://instagr.am/p/Cabc123defG/",
	} {
		c := Classify(raw)
		assert.Equal(PlatformInstagram, c.Platform, raw)
		assert.True(c.Valid, raw)
	}
}

// A URL can belong to a known platform without pointing at a video.
func TestClassifyHostMatchShapeMismatch(t *testing.T) {
	assert := assert_.New(t)

	for _, raw := range []string{
		"https://www.tiktok.com/@someuser",
		"https://www.youtube.com/feed/subscriptions",
		"https://www.instagram.com/someuser/",
	} {
		c := Classify(raw)
		assert.NotEqual(PlatformUnknown, c.Platform, raw)
		assert.False(c.Valid, raw)
	}
}

func TestClassifyUnknownHost(t *testing.T) {
	assert := assert_.New(t)

	c := Classify("https://example.com/video/123")
	assert.Equal(PlatformUnknown, c.Platform)
	assert.False(c.Valid)
}

func TestClassifyIdempotent(t *testing.T) {
	assert := assert_.New(t)

	raw := "https://www.tiktok.com/@someuser/video/1234567890123456789"
	first := Classify(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(first, Classify(raw))
	}
}

func TestClassifyTrimsWhitespace(t *testing.T) {
	assert := assert_.New(t)

	c := Classify("  https://youtu.be/dQw4w9WgXcQ \n")
	assert.Equal(PlatformYouTube, c.Platform)
	assert.True(c.Valid)
}
