package config

import (
	"errors"
	"fmt"
)

// Load and Validate wrap one of these. The specific kinds below wrap the
// general ones, so errors.Is matches either.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrBackendURL is a base_url the backend client cannot dial.
	ErrBackendURL = fmt.Errorf("%w: backend base url", ErrInvalidConfig)
	// ErrDotEnv is a GRADEBASE_DOTENV file that could not be read.
	ErrDotEnv = fmt.Errorf("%w: dotenv", ErrLoadConfig)
)
