package clipsave

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTargetDir      = "."
	defaultHistoryBackend = "bolt"
	defaultHistoryPath    = "clipsave.db"
	defaultListenAddr     = ":8750"
)

// Duration wraps time.Duration so yaml configs can say "15s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config describes runtime configuration for the whole toolkit. The
// provider registry itself is populated by provider packages; Endpoints
// only overrides their endpoint templates.
type Config struct {
	TargetDir       string   `yaml:"target_dir"`
	ProxyURL        string   `yaml:"proxy_url"`
	ProviderTimeout Duration `yaml:"provider_timeout"`
	ProbeTimeout    Duration `yaml:"probe_timeout"`
	DemoMode        bool     `yaml:"demo_mode"`
	// HistoryBackend is one of "bolt", "sqlite", "memory".
	HistoryBackend string `yaml:"history_backend"`
	HistoryPath    string `yaml:"history_path"`
	// ListenAddr is the bind address of the relay daemon.
	ListenAddr string `yaml:"listen_addr"`
	// Endpoints maps platform names to download-info endpoints that take
	// precedence over the built-in providers.
	Endpoints map[string]string `yaml:"endpoints"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		TargetDir:       defaultTargetDir,
		ProviderTimeout: Duration(DefaultProviderTimeout),
		ProbeTimeout:    Duration(DefaultProbeTimeout),
		HistoryBackend:  defaultHistoryBackend,
		HistoryPath:     defaultHistoryPath,
		ListenAddr:      defaultListenAddr,
	}
}

// LoadConfig reads a yaml config from path. A missing or empty file
// yields the defaults with no error; a malformed or invalid one is an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.TargetDir == "" {
		cfg.TargetDir = defaultTargetDir
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = Duration(DefaultProviderTimeout)
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = Duration(DefaultProbeTimeout)
	}
	switch cfg.HistoryBackend {
	case "bolt", "sqlite", "memory":
	case "":
		cfg.HistoryBackend = defaultHistoryBackend
	default:
		return cfg, fmt.Errorf("invalid history_backend: %q", cfg.HistoryBackend)
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = defaultHistoryPath
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	return cfg, nil
}
