package feature

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// Default base URL of the flag provider API.
	DefaultBaseURL = "https://edge.api.flagsmith.com/api/v1/"

	// Number of seconds to wait for the provider connection
	// before Init gives up.
	DefaultConnectTimeout = 10 * time.Second
)

// Config controls whether feature flags are evaluated and where the
// provider lives.
type Config struct {
	Enabled  bool   `env:"FEATURE_FLAGS_ENABLED" envDefault:"false"`
	URL      string `env:"FEATURE_FLAGS_URL" envDefault:"https://edge.api.flagsmith.com/api/v1/"`
	APIToken string `env:"FEATURE_FLAGS_API_TOKEN"`
}

// LoadConfig reads Config from the environment. A .env file in the working
// directory is loaded first when present; variables already set win.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("feature: parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports whether an enabled config is usable.
// A disabled config is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.APIToken == "" {
		return ErrMissingAPIToken
	}
	return nil
}
