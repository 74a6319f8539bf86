// Package config loads pitchroom configuration from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/pitchroom/domain/config"
)

// Loader loads configuration from files.
type Loader struct {
	// ExpandEnv enables environment variable expansion.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// Validate enables configuration validation.
	Validate bool
	// DotEnv lists .env files read before expansion. Missing files are skipped.
	DotEnv []string
}

// NewLoader creates a new configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		StrictEnv: false,
		Validate:  true,
		DotEnv:    []string{".env"},
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// WithDotEnv replaces the list of .env files.
func WithDotEnv(files ...string) LoaderOption {
	return func(l *Loader) {
		l.DotEnv = files
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, ext)
	}
}

// LoadFile loads configuration from a file path.
func (l *Loader) LoadFile(path string) (*config.Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// LoadOrDefault loads path when set, otherwise validates the defaults
// after applying .env files and the environment overrides.
func (l *Loader) LoadOrDefault(path string) (*config.Config, error) {
	if path != "" {
		return l.LoadFile(path)
	}
	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := config.Default()
	applyEnvOverrides(cfg)
	return cfg, l.validate(cfg)
}

// Load loads configuration from a reader. Fields absent from the
// document keep their defaults.
func (l *Loader) Load(r io.Reader, format Format) (*config.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	if l.ExpandEnv {
		data, err = l.expandEnvVars(data)
		if err != nil {
			return nil, err
		}
	}

	cfg := config.Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}

	applyEnvOverrides(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*config.Config, error) {
	return l.Load(strings.NewReader(content), format)
}

// LoadBytes loads configuration from bytes.
func (l *Loader) LoadBytes(data []byte, format Format) (*config.Config, error) {
	return l.Load(strings.NewReader(string(data)), format)
}

func (l *Loader) validate(cfg *config.Config) error {
	if !l.Validate {
		return nil
	}
	if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, errs)
	}
	return nil
}

// loadDotEnv reads .env files without overriding variables already set.
func (l *Loader) loadDotEnv() error {
	for _, file := range l.DotEnv {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// expandEnvVars expands ${VAR} and $VAR patterns in the data.
func (l *Loader) expandEnvVars(data []byte) ([]byte, error) {
	expander := &envExpander{
		strict: l.StrictEnv,
	}
	result, err := expander.Expand(string(data))
	if err != nil {
		return nil, err
	}
	return []byte(result), nil
}

// Environment variables that override file values when set.
const (
	EnvAPIKey       = "PITCHROOM_API_KEY"
	EnvBaseURL      = "PITCHROOM_BASE_URL"
	EnvProvider     = "PITCHROOM_PROVIDER"
	EnvGatewayToken = "PITCHROOM_GATEWAY_TOKEN"
	EnvLogLevel     = "PITCHROOM_LOG_LEVEL"
)

func applyEnvOverrides(cfg *config.Config) {
	set := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	set(EnvAPIKey, &cfg.Generation.APIKey)
	set(EnvBaseURL, &cfg.Generation.BaseURL)
	set(EnvProvider, &cfg.Generation.Provider)
	set(EnvGatewayToken, &cfg.Speech.GatewayToken)
	set(EnvLogLevel, &cfg.Logging.Level)
}
