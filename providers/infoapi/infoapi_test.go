package infoapi

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/clipsave/clipsave"
)

func TestNormalize(t *testing.T) {
	assert := assert_.New(t)

	body := []byte(`{
		"success": true,
		"title": "a video",
		"download_url": "https://relay.example.com/api/fetch?url=x",
		"quality": "720",
		"platform": "tiktok",
		"no_watermark": true
	}`)
	d, ok := normalize(body).Parts()
	assert.True(ok)
	assert.Equal("a video", d.Title)
	assert.Equal("https://relay.example.com/api/fetch?url=x", d.DownloadURL)
	assert.True(d.NoWatermark)
}

func TestNormalizeRejects(t *testing.T) {
	assert := assert_.New(t)

	for _, body := range []string{
		`{"success":false,"error":"unsupported platform"}`,
		`{"success":true,"title":"t"}`,
		`{}`,
	} {
		_, ok := normalize([]byte(body)).Parts()
		assert.False(ok, body)
	}
}

func TestNew(t *testing.T) {
	assert := assert_.New(t)

	p := New(clipsave.PlatformTikTok, "")
	assert.Equal("infoapi-tiktok", p.Name)
	assert.Equal(clipsave.PlatformTikTok, p.Platform)
	assert.Equal(clipsave.PriorityLowest, p.Priority)
}

func TestDefaultRegistrations(t *testing.T) {
	assert := assert_.New(t)

	for _, name := range []string{"infoapi-tiktok", "infoapi-youtube", "infoapi-instagram"} {
		priority, err := clipsave.DefaultProviderRegistry.GetPriority(name)
		assert.NoError(err)
		assert.Equal(clipsave.PriorityLowest, priority)
	}
}
