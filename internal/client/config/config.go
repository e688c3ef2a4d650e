package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/tasksync/internal/timex"
)

// Config holds runtime settings for the tasksync CLI.
//
// Fields:
//   - ServerURL: base URL of the HTTP API; the websocket URL is derived from it.
//   - ReconnectInterval: first backoff step for realtime reconnects.
//   - SessionFile: where the token pair is kept between invocations.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL         string
	ReconnectInterval time.Duration
	SessionFile       string
	LogLevel          string
}

var (
	ErrInvalidServerURL = errors.New("server url must be an absolute http(s) url")
	ErrInvalidInterval  = errors.New("reconnect interval must be positive")
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.ReconnectInterval = time.Second
	c.SessionFile = defaultSessionFile()
	c.LogLevel = "warn"
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tasksync-session.json"
	}
	return filepath.Join(dir, "tasksync", "session.json")
}

// FileConfig is the on-disk shape of the client configuration.
// Zero values leave the defaults untouched.
type FileConfig struct {
	ServerURL         string         `json:"server_url" yaml:"server_url"`
	ReconnectInterval timex.Duration `json:"reconnect_interval" yaml:"reconnect_interval"`
	SessionFile       string         `json:"session_file" yaml:"session_file"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
}

// Load applies defaults and then the file at path, if path is not empty.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = json.Unmarshal(b, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.ReconnectInterval.Duration > 0 {
		cfg.ReconnectInterval = fc.ReconnectInterval.Duration
	}
	if fc.SessionFile != "" {
		cfg.SessionFile = fc.SessionFile
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late, mid-command.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServerURL, c.ServerURL)
	}
	if c.ReconnectInterval <= 0 {
		return ErrInvalidInterval
	}
	return nil
}
