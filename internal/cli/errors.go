package cli

import "errors"

// Sentinel kinds for command-line errors.
var (
	ErrUsage          = errors.New("usage error")
	ErrUnknownCommand = errors.New("unknown command")
)
