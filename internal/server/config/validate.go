package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.StorageBackend)
	}
	switch c.TraceExporter {
	case TraceNone, TraceStdout:
	default:
		return fmt.Errorf("%w: unknown trace exporter %q", ErrInvalidConfig, c.TraceExporter)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is empty", ErrInvalidConfig)
	}
	if c.StorageBackend == BackendPostgres && c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database DSN is required for the postgres backend", ErrInvalidConfig)
	}
	if c.AccessTokenValidityDuration <= 0 || c.RefreshTokenValidityDuration <= 0 {
		return fmt.Errorf("%w: token validity must be positive", ErrInvalidConfig)
	}
	if c.WSPingInterval <= 0 {
		return fmt.Errorf("%w: websocket ping interval must be positive", ErrInvalidConfig)
	}
	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("%w: websocket send buffer must be positive", ErrInvalidConfig)
	}
	return nil
}
