// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the client runtime configuration.
type Config struct {
	// APIBaseURL is the Signify backend root.
	APIBaseURL string `env:"SIGNIFY_API_URL" envDefault:"https://signify-backend-ogbk.onrender.com"`
	// DataDir holds the local session database and sealing key. Empty
	// means a per-user default under the OS config directory.
	DataDir string `env:"SIGNIFY_DATA_DIR"`
	// HTTPTimeout bounds each backend request. The core models no
	// timeouts of its own; this is the caller-side policy.
	HTTPTimeout time.Duration `env:"SIGNIFY_HTTP_TIMEOUT" envDefault:"30s"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(base, "signify")
	}
	return cfg, nil
}
