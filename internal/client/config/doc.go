// Package config loads runtime configuration for the tasksync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file passed to Load (the CLI's --config flag).
//  3. Command-line flags, applied by the CLI after Load returns.
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "2s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "reconnect_interval": "1s",
//	  "session_file": "/home/me/.config/tasksync/session.json",
//	  "log_level": "warn"
//	}
package config
