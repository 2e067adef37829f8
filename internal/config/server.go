package config

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// ServerConfig holds the HTTP server settings for the dashboard API. These
// come from the environment, not from the pipeline config file, so deployers
// can tune them without touching the monitored-location config.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ConfigPath   string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Port:         getEnv("FIBER_PORT", "8080"),
		ReadTimeout:  parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s")),
		WriteTimeout: parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "30s")),
		ConfigPath:   getEnv("CONFIG_PATH", DefaultConfigPath),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}
