// Package config loads gostratus configuration from defaults, an optional
// config file, and GOSTRATUS_* environment variables, in that precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the full gostratus configuration.
type Config struct {
	Gateway Gateway `mapstructure:"gateway"`
	Storage Storage `mapstructure:"storage"`
	Monitor Monitor `mapstructure:"monitor"`
	Logging Logging `mapstructure:"logging"`

	// DataDir is where local state (the job registry) lives.
	DataDir string `mapstructure:"data_dir"`
}

// Gateway configures the remote job-execution gateway client.
type Gateway struct {
	// BaseURL is the gateway root. Required for remote commands.
	BaseURL string `mapstructure:"base_url"`

	// Token is the bearer token of an already-authenticated session.
	// Usually supplied via GOSTRATUS_GATEWAY_TOKEN.
	Token string `mapstructure:"token"`

	// Tenant is an optional tenant header value.
	Tenant string `mapstructure:"tenant"`

	// Username is the authenticated identity, prepended to personal
	// storage paths.
	Username string `mapstructure:"username"`

	// Timeout bounds each gateway request.
	Timeout time.Duration `mapstructure:"timeout"`

	// RateLimit is the maximum gateway requests per second (0 = unlimited).
	RateLimit float64 `mapstructure:"rate_limit"`
}

// Storage configures path resolution and URI rendering.
type Storage struct {
	Scheme              string `mapstructure:"scheme"`
	PersonalSystemID    string `mapstructure:"personal_system_id"`
	CommunitySystemID   string `mapstructure:"community_system_id"`
	ProjectSystemPrefix string `mapstructure:"project_system_prefix"`
}

// Monitor configures job monitoring defaults.
type Monitor struct {
	// Interval is the poll interval.
	Interval time.Duration `mapstructure:"interval"`

	// TimeoutMinutes bounds monitoring; zero derives the bound from the
	// job's declared max runtime.
	TimeoutMinutes int `mapstructure:"timeout_minutes"`
}

// Logging configures the CLI logger.
type Logging struct {
	Level   string `mapstructure:"level"`
	Profile string `mapstructure:"profile"`
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %s", c.Monitor.Interval)
	}
	if c.Gateway.RateLimit < 0 {
		return fmt.Errorf("gateway.rate_limit must be >= 0, got %f", c.Gateway.RateLimit)
	}
	return nil
}
