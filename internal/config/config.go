package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"climate-pipeline/internal/models"
)

// PlaceholderAPIKey is the literal shipped in the sample config file. A
// config that still carries it is treated as having no key at all.
const PlaceholderAPIKey = "OPENWEATHERMAP_API_KEY"

// DefaultConfigPath is used when the hosting environment does not name a
// config file explicitly.
const DefaultConfigPath = "config.json"

type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindParse
	KindValidation
	KindUnexpected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindParse:
		return "parse-error"
	case KindValidation:
		return "validation-error"
	default:
		return "unexpected-error"
	}
}

// ConfigError is the only error type that crosses the loader boundary.
type ConfigError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Kind, e.Msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// AsConfigError unwraps err into a *ConfigError if it is one.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// CredentialResolver supplies an API key when the config file does not embed
// one. Implementations: EnvCredentialResolver (external secret store via
// environment) and StaticCredentialResolver (embedding hosts, tests).
type CredentialResolver interface {
	APIKey() (string, bool)
}

// Loader reads and validates the pipeline configuration file. Load is called
// once per pipeline run so edits to the file take effect on the next run.
type Loader struct {
	path     string
	resolver CredentialResolver
	validate *validator.Validate
	logger   *zap.Logger
}

func NewLoader(path string, resolver CredentialResolver, logger *zap.Logger) *Loader {
	if path == "" {
		path = DefaultConfigPath
	}
	return &Loader{
		path:     path,
		resolver: resolver,
		validate: validator.New(),
		logger:   logger,
	}
}

// Load reads the config file and returns a validated Configuration. Every
// failure is mapped to a *ConfigError; no raw I/O or decoding fault escapes.
func (l *Loader) Load() (*models.Configuration, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Error("Configuration file not found", zap.String("path", l.path))
			return nil, &ConfigError{Kind: KindNotFound, Msg: l.path, Err: err}
		}
		l.logger.Error("Configuration file unreadable", zap.String("path", l.path), zap.Error(err))
		return nil, &ConfigError{Kind: KindUnexpected, Msg: l.path, Err: err}
	}

	var cfg models.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		l.logger.Error("Configuration file is not valid JSON", zap.String("path", l.path), zap.Error(err))
		return nil, &ConfigError{Kind: KindParse, Msg: l.path, Err: err}
	}

	// Fall back to the credential resolver when the file carries no key.
	if cfg.APIKey == "" && l.resolver != nil {
		if key, ok := l.resolver.APIKey(); ok {
			cfg.APIKey = key
		}
	}

	if cfg.APIKey == "" || cfg.APIKey == PlaceholderAPIKey {
		return nil, &ConfigError{Kind: KindValidation, Msg: "API key missing or not set in config file / secrets"}
	}

	if err := l.validate.Struct(&cfg); err != nil {
		return nil, &ConfigError{Kind: KindValidation, Msg: "location coordinates missing", Err: err}
	}

	l.logger.Info("Configuration loaded",
		zap.String("path", l.path),
		zap.String("city", cfg.Location.CityName))

	return &cfg, nil
}
