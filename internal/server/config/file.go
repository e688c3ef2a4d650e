package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/flagx"
	"github.com/dmitrijs2005/tasksync/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the server configuration. Interval
// fields use timex.Duration so both "15m" and integer nanoseconds work.
// Zero values leave the defaults untouched.
type FileConfig struct {
	HTTPAddr                     string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr                     string         `json:"grpc_addr" yaml:"grpc_addr"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	StorageBackend               string         `json:"storage_backend" yaml:"storage_backend"`
	AllowedOrigin                string         `json:"allowed_origin" yaml:"allowed_origin"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	TraceExporter                string         `json:"trace_exporter" yaml:"trace_exporter"`
	WSPingInterval               timex.Duration `json:"ws_ping_interval" yaml:"ws_ping_interval"`
	WSSendBuffer                 int            `json:"ws_send_buffer" yaml:"ws_send_buffer"`
	LoginRatePerMinute           int            `json:"login_rate_per_minute" yaml:"login_rate_per_minute"`
	LoginRateBurst               int            `json:"login_rate_burst" yaml:"login_rate_burst"`
}

// parseFile overlays values from the file named by -c/-config, if any.
// Files ending in .yaml or .yml are decoded as YAML, everything else as JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, fc)
	default:
		err = json.Unmarshal(b, fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.GRPCAddr, fc.GRPCAddr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.StorageBackend, fc.StorageBackend)
	setString(&c.AllowedOrigin, fc.AllowedOrigin)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.TraceExporter, fc.TraceExporter)

	if fc.AccessTokenValidityDuration.Duration > 0 {
		c.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration.Duration > 0 {
		c.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
	if fc.WSPingInterval.Duration > 0 {
		c.WSPingInterval = fc.WSPingInterval.Duration
	}
	if fc.WSSendBuffer > 0 {
		c.WSSendBuffer = fc.WSSendBuffer
	}
	if fc.LoginRatePerMinute > 0 {
		c.LoginRatePerMinute = fc.LoginRatePerMinute
	}
	if fc.LoginRateBurst > 0 {
		c.LoginRateBurst = fc.LoginRateBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
