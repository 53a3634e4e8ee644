package config

import (
	"time"

	"github.com/clipcal/clipcal/internal/admission"
	"github.com/clipcal/clipcal/internal/ailink"
)

// Config is the complete application configuration. Values are layered:
// built-in defaults, an optional YAML config file, then CLIPCAL_*
// environment variables and bound flags.
type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Admission AdmissionConfig  `mapstructure:"admission"`
	AILink    ailink.Config    `mapstructure:"ailink"`
	Admin     AdminConfig      `mapstructure:"admin"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AdmissionConfig contains the rate-limit and abuse thresholds.
type AdmissionConfig struct {
	Limits admission.Limits `mapstructure:"limits"`
}

// AdminConfig contains the operator endpoint settings. Token is the
// shared secret required as a bearer credential; the endpoints are
// disabled when it is empty.
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: trace, debug, info, warn,
	// error.
	Level string `mapstructure:"level"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}
