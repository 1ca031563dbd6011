package clipsave

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	assert_ "github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	assert := assert_.New(t)

	for _, path := range []string{"", filepath.Join(t.TempDir(), "does-not-exist.yaml")} {
		cfg, err := LoadConfig(path)
		assert.NoError(err)
		assert.Equal(DefaultConfig(), cfg)
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	assert := assert_.New(t)

	cfg, err := LoadConfig(writeConfig(t, ""))
	assert.NoError(err)
	assert.Equal(DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	assert := assert_.New(t)

	cfg, err := LoadConfig(writeConfig(t, `
target_dir: /tmp/videos
proxy_url: http://localhost:9999
provider_timeout: 30s
probe_timeout: 2s
demo_mode: true
history_backend: sqlite
history_path: /tmp/history.db
listen_addr: ":9000"
endpoints:
  tiktok: http://localhost:9999/api/download
`))
	assert.NoError(err)
	assert.Equal("/tmp/videos", cfg.TargetDir)
	assert.Equal("http://localhost:9999", cfg.ProxyURL)
	assert.Equal(30*time.Second, cfg.ProviderTimeout.Std())
	assert.Equal(2*time.Second, cfg.ProbeTimeout.Std())
	assert.True(cfg.DemoMode)
	assert.Equal("sqlite", cfg.HistoryBackend)
	assert.Equal("/tmp/history.db", cfg.HistoryPath)
	assert.Equal(":9000", cfg.ListenAddr)
	assert.Equal("http://localhost:9999/api/download", cfg.Endpoints["tiktok"])
}

func TestLoadConfigPartial(t *testing.T) {
	assert := assert_.New(t)

	cfg, err := LoadConfig(writeConfig(t, "target_dir: /tmp/videos\n"))
	assert.NoError(err)
	assert.Equal("/tmp/videos", cfg.TargetDir)
	assert.Equal(DefaultProviderTimeout, cfg.ProviderTimeout.Std())
	assert.Equal("bolt", cfg.HistoryBackend)
}

func TestLoadConfigInvalidBackend(t *testing.T) {
	assert := assert_.New(t)

	_, err := LoadConfig(writeConfig(t, "history_backend: redis\n"))
	assert.Error(err)
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	assert := assert_.New(t)

	_, err := LoadConfig(writeConfig(t, "provider_timeout: soon\n"))
	assert.Error(err)
}
