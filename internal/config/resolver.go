package config

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// EnvAPIKeyVar is the environment variable the env resolver reads. It matches
// the key name used by the hosted secret store.
const EnvAPIKeyVar = "OPENWEATHERMAP_API_KEY"

// EnvCredentialResolver looks the API key up in the process environment,
// loading a .env file first if one exists.
type EnvCredentialResolver struct {
	logger *zap.Logger
}

func NewEnvCredentialResolver(logger *zap.Logger) *EnvCredentialResolver {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}
	return &EnvCredentialResolver{logger: logger}
}

func (r *EnvCredentialResolver) APIKey() (string, bool) {
	key := os.Getenv(EnvAPIKeyVar)
	if key == "" {
		return "", false
	}
	r.logger.Info("API key resolved from environment")
	return key, true
}

// StaticCredentialResolver returns a fixed key. Used by embedding hosts that
// manage secrets themselves, and by tests.
type StaticCredentialResolver struct {
	Key string
}

func (r StaticCredentialResolver) APIKey() (string, bool) {
	return r.Key, r.Key != ""
}
