// Package config holds the server's application-level settings and the
// device configuration file model (spec section 6 "Device configuration
// file"). Grounded on the teacher's pkg/config.Config (log level,
// timeouts, logger factory) generalized with struct-tag defaults the way
// mcuadros/go-defaults is used throughout the teacher's device definitions.
package config

import (
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
)

// ServerConfig holds the buttplugd process's own settings, independent of
// any device configuration file.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" default:"info"`

	// ListenAddr is the WebSocket connector's bind address.
	ListenAddr string `yaml:"listen_addr" default:":12345"`

	// MaxPingTime is the server-front ping watchdog period (spec section
	// 4.7); zero disables it.
	MaxPingTime time.Duration `yaml:"max_ping_time" default:"0"`

	// ServerName is advertised in ServerInfo.
	ServerName string `yaml:"server_name" default:"buttplugd"`

	// DeviceConfigPath points at the JSON device configuration file (spec
	// section 6); empty uses the built-in catalog only.
	DeviceConfigPath string `yaml:"device_config_path,omitempty"`

	// UserConfigPath points at an optional user overlay JSON file.
	UserConfigPath string `yaml:"user_config_path,omitempty"`
}

// DefaultServerConfig returns a ServerConfig with every default tag applied.
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	defaults.SetDefaults(cfg)
	return cfg
}

// NewLogger builds a logrus.Logger configured from this ServerConfig,
// grounded on teacher's pkg/config.Config.NewLogger (structured text
// formatter, explicit timestamp format).
func (c *ServerConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
