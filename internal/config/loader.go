package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted before the GRADEBASE_ prefix scan.
const (
	envPrefix     = "GRADEBASE_"
	envConfigFile = "GRADEBASE_CONFIG"
	envDotEnvFile = "GRADEBASE_DOTENV"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRADEBASE_CONFIG is set
//  3. dotenv file if GRADEBASE_DOTENV is set (feeds step 4)
//  4. env (prefix GRADEBASE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Values already present in the environment win over the dotenv file.
	if path := os.Getenv(envDotEnvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrDotEnv, path, err)
		}
	}

	// GRADEBASE_BASE_URL -> base_url, GRADEBASE_PAGE_SIZE -> page_size, ...
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: must be an absolute http(s) URL, got %q", ErrBackendURL, c.BaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.MLMinRows < 0 {
		return fmt.Errorf("%w: ml_min_rows must not be negative", ErrInvalidConfig)
	}
	return nil
}
