package cache

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultTTL is applied to writes when the composing repository does not
// declare its own time-to-live.
const DefaultTTL = 300 * time.Second

// Config carries the per-repository cache settings.
type Config struct {
	// Prefix is the domain segment of every key (e.g. "user"). Required.
	// It may not contain the key separator or glob metacharacters.
	Prefix string

	// TTL is the default time-to-live for writes. Zero selects DefaultTTL.
	// Negative values are invalid: there are no permanent entries.
	TTL time.Duration

	// Logger receives warn-level entries for every swallowed cache fault.
	// The zero value discards them.
	Logger zerolog.Logger

	// Metrics receives hit/miss/fault counters. Nil selects NopMetrics.
	Metrics Metrics
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if !validPrefix(c.Prefix) {
		return &ConfigError{Field: "Prefix", Message: "must be non-empty and free of ':' and glob metacharacters"}
	}
	if c.TTL < 0 {
		return &ConfigError{Field: "TTL", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
