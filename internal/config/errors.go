package config

import "errors"

var (
	// ErrInvalidConfig indicates a value that failed validation
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnknownKey indicates a key in the config file that maps to no setting
	ErrUnknownKey = errors.New("unknown config key")
)
