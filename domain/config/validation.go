package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/notification"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Known provider and backend names.
var (
	Providers = []string{"openai", "ollama", "copilot", "mock"}
	Backends  = []string{"memory", "filesystem", "sqlite", "postgres", "redis", "badger", "mongodb", "dynamodb", "s3", "gcs", "azblob"}
)

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) ValidationErrors {
	v.errors = nil

	v.validateSession(cfg.Session)
	v.validateGeneration(cfg.Generation)
	v.validateStorage(cfg.Storage)
	v.validateTelemetry(cfg.Telemetry)
	v.validateNotifications(cfg.Notifications)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateSession(s SessionConfig) {
	for name, d := range s.PhaseDurations {
		path := "session.phase_durations." + name
		p := negotiation.Phase(name)
		if !p.IsValid() || p.IsTerminal() {
			v.addError(path, fmt.Sprintf("unknown timed phase: %s", name))
			continue
		}
		if d.Duration() <= 0 {
			v.addError(path, "duration must be positive")
		}
	}
	if s.HistoryWindow < 1 {
		v.addError("session.history_window", "history_window must be at least 1")
	}
}

func (v *Validator) validateGeneration(g GenerationConfig) {
	if !contains(Providers, g.Provider) {
		v.addError("generation.provider", fmt.Sprintf("unknown provider: %s", g.Provider))
		return
	}
	if g.Provider == "openai" {
		if g.BaseURL == "" {
			v.addError("generation.base_url", "base_url is required for openai provider")
		}
		if g.APIKey == "" {
			v.addError("generation.api_key", "api_key is required for openai provider")
		}
	}
	if g.Temperature < 0 || g.Temperature > 2 {
		v.addError("generation.temperature", "temperature must be between 0 and 2")
	}
	if g.MaxTokens < 0 {
		v.addError("generation.max_tokens", "max_tokens must be non-negative")
	}
	if g.Resilience.Retry.MaxAttempts < 0 {
		v.addError("generation.resilience.retry.max_attempts", "max_attempts must be non-negative")
	}
	if g.Resilience.Bulkhead.MaxConcurrent < 0 {
		v.addError("generation.resilience.bulkhead.max_concurrent", "max_concurrent must be non-negative")
	}
}

func (v *Validator) validateStorage(s StorageConfig) {
	if !contains(Backends, s.Backend) {
		v.addError("storage.backend", fmt.Sprintf("unknown backend: %s", s.Backend))
		return
	}

	required := map[string][2]string{
		"filesystem": {"storage.filesystem.dir", s.Filesystem.Dir},
		"sqlite":     {"storage.sqlite.path", s.SQLite.Path},
		"postgres":   {"storage.postgres.dsn", s.Postgres.DSN},
		"redis":      {"storage.redis.addr", s.Redis.Addr},
		"mongodb":    {"storage.mongodb.uri", s.MongoDB.URI},
		"dynamodb":   {"storage.dynamodb.table", s.DynamoDB.Table},
		"s3":         {"storage.s3.bucket", s.S3.Bucket},
		"gcs":        {"storage.gcs.bucket", s.GCS.Bucket},
		"azblob":     {"storage.azblob.container", s.AzBlob.Container},
	}
	if field, ok := required[s.Backend]; ok && field[1] == "" {
		v.addError(field[0], fmt.Sprintf("required for %s backend", s.Backend))
	}

	if s.Backend == "badger" && s.Badger.Dir == "" && !s.Badger.InMemory {
		v.addError("storage.badger.dir", "dir is required unless in_memory is set")
	}
	if s.Backend == "azblob" && s.AzBlob.AccountName == "" && s.AzBlob.ConnectionString == "" {
		v.addError("storage.azblob", "account_name or connection_string is required")
	}
}

func (v *Validator) validateTelemetry(t TelemetryConfig) {
	if !t.Tracing.Enabled {
		return
	}
	switch t.Tracing.Exporter {
	case "stdout", "otlp":
	default:
		v.addError("telemetry.tracing.exporter", fmt.Sprintf("unknown exporter: %s", t.Tracing.Exporter))
	}
	if t.Tracing.SampleRate < 0 || t.Tracing.SampleRate > 1 {
		v.addError("telemetry.tracing.sample_rate", "sample_rate must be between 0 and 1")
	}
}

func (v *Validator) validateNotifications(n NotificationsConfig) {
	for i, ep := range n.Webhooks {
		path := fmt.Sprintf("notifications.webhooks[%d]", i)
		u, err := url.Parse(ep.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.addError(path+".url", "url must be an absolute http(s) URL")
		}
		for _, e := range ep.Events {
			if !slices.Contains(notification.EventTypes(), e) {
				v.addError(path+".events", fmt.Sprintf("unknown event type: %s", e))
			}
		}
	}
	if n.BatchSize < 0 {
		v.addError("notifications.batch_size", "batch_size must be non-negative")
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
