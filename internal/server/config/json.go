package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/aimauth/internal/flagx"
	"github.com/dmitrijs2005/aimauth/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
// Absent or zero fields leave the current value alone.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	DBDriver          string         `json:"db_driver"`
	DatabaseDSN       string         `json:"database_dsn"`
	DBMaxConns        int32          `json:"db_max_conns"`
	DBMinConns        int32          `json:"db_min_conns"`
	DBMaxConnLifetime timex.Duration `json:"db_max_conn_lifetime"`
	DBMaxConnIdleTime timex.Duration `json:"db_max_conn_idle_time"`
	DBHealthCheck     timex.Duration `json:"db_health_check_period"`
	SecretKey         string         `json:"secret_key"`
	BcryptCost        int            `json:"bcrypt_cost"`
	DefaultRole       string         `json:"default_role"`
	LogLevel          string         `json:"log_level"`
	LogFormat         string         `json:"log_format"`
	OTLPEndpoint      string         `json:"otlp_endpoint"`
	OTLPInsecure      *bool          `json:"otlp_insecure"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file given by -c / -config in args, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DBDriver, c.DBDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.DefaultRole, c.DefaultRole)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.OTLPEndpoint, c.OTLPEndpoint)

	if c.DBMaxConns > 0 {
		config.DBMaxConns = c.DBMaxConns
	}
	if c.DBMinConns > 0 {
		config.DBMinConns = c.DBMinConns
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.DBMaxConnLifetime.Duration > 0 {
		config.DBMaxConnLifetime = c.DBMaxConnLifetime.Duration
	}
	if c.DBMaxConnIdleTime.Duration > 0 {
		config.DBMaxConnIdleTime = c.DBMaxConnIdleTime.Duration
	}
	if c.DBHealthCheck.Duration > 0 {
		config.DBHealthCheck = c.DBHealthCheck.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.OTLPInsecure != nil {
		config.OTLPInsecure = *c.OTLPInsecure
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
