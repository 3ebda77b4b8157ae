package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the aimauth CLI.
//
// Fields:
//   - ServerURL: base URL of the aimauth HTTP API.
//   - RequestTimeout: per-request timeout for API calls.
type Config struct {
	ServerURL      string        `env:"AIM_SERVER_URL"`
	RequestTimeout time.Duration `env:"AIM_REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// parseEnv overlays AIM_SERVER_URL and AIM_REQUEST_TIMEOUT. Panics on
// malformed values.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
