package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":12345", cfg.ListenAddr)
	assert.Equal(t, time.Duration(0), cfg.MaxPingTime)
	assert.Equal(t, "buttplugd", cfg.ServerName)
}

func TestNewLoggerParsesConfiguredLevel(t *testing.T) {
	cfg := &ServerConfig{LogLevel: "debug"}

	logger := cfg.NewLogger()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewLoggerFallsBackToInfoOnBadLevel(t *testing.T) {
	cfg := &ServerConfig{LogLevel: "not-a-level"}

	logger := cfg.NewLogger()

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
