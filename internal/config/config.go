// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and GRADEBASE_* env vars.
// - Load failures wrap ErrLoadConfig or ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the gateway listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the root of the grades backend API, e.g. "http://localhost:8000/api".
	BaseURL string `koanf:"base_url"`

	// Token is an optional bearer credential attached to every backend call.
	Token string `koanf:"token"`

	// PageSize is sent as page_size on collection requests.
	PageSize int `koanf:"page_size"`

	// RequestTimeoutMS bounds each backend round-trip.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MLMinRows is the minimum number of published rows before ML may run; 0 disables the check.
	MLMinRows int `koanf:"ml_min_rows"`

	// ExportDir is where exported files are written.
	ExportDir string `koanf:"export_dir"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		BaseURL:          "http://localhost:8000/api",
		PageSize:         1000,
		RequestTimeoutMS: 15_000,
		MLMinRows:        5,
		ExportDir:        ".",
	}
}
