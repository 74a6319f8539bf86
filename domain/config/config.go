// Package config provides the configuration model for pitchroom.
package config

import (
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/notification"
)

// Config is the complete application configuration.
type Config struct {
	// Session controls timing and scoring of a pitch session.
	Session SessionConfig `json:"session" yaml:"session"`
	// Generation selects and tunes the reply generator.
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	// Storage selects where finished reports go.
	Storage StorageConfig `json:"storage" yaml:"storage"`
	// Speech configures the speech gateway.
	Speech SpeechConfig `json:"speech,omitempty" yaml:"speech,omitempty"`
	// Logging configures structured logging.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
	// Telemetry configures metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`
	// Server configures the HTTP API.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
	// Notifications configures session webhooks.
	Notifications NotificationsConfig `json:"notifications,omitempty" yaml:"notifications,omitempty"`
}

// SessionConfig controls a pitch session.
type SessionConfig struct {
	// PhaseDurations overrides the time allotted to each phase, keyed by phase name.
	PhaseDurations map[string]Duration `json:"phase_durations,omitempty" yaml:"phase_durations,omitempty"`
	// ClampScores caps percentage and success rate at 100.
	ClampScores bool `json:"clamp_scores,omitempty" yaml:"clamp_scores,omitempty"`
	// HistoryWindow is how many past messages each counterpart sees.
	HistoryWindow int `json:"history_window,omitempty" yaml:"history_window,omitempty"`
}

// Durations returns the effective per-phase durations.
func (s SessionConfig) Durations() map[negotiation.Phase]time.Duration {
	out := negotiation.DefaultDurations()
	for name, d := range s.PhaseDurations {
		out[negotiation.Phase(name)] = d.Duration()
	}
	return out
}

// GenerationConfig configures the reply generator.
type GenerationConfig struct {
	// Provider is openai, ollama, copilot or mock.
	Provider string `json:"provider" yaml:"provider"`
	// Model is the model name.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// APIKey authenticates against BaseURL.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	// MaxTokens caps each reply.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// Timeout bounds a single generation call.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// CLIPath is the Copilot CLI binary.
	CLIPath string `json:"cli_path,omitempty" yaml:"cli_path,omitempty"`
	// CLIURL connects to an already running Copilot CLI server.
	CLIURL string `json:"cli_url,omitempty" yaml:"cli_url,omitempty"`
	// Resilience wraps every generation call.
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
}

// ResilienceConfig contains resilience settings.
type ResilienceConfig struct {
	// Retry configures retry behavior.
	Retry RetryConfig `json:"retry,omitempty" yaml:"retry,omitempty"`
	// CircuitBreaker configures circuit breaker behavior.
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	// Bulkhead configures bulkhead behavior.
	Bulkhead BulkheadConfig `json:"bulkhead,omitempty" yaml:"bulkhead,omitempty"`
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum attempts, including the first.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// InitialDelay is the first retry delay.
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`
	// Multiplier is the backoff multiplier.
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Threshold is consecutive failures before opening.
	Threshold int `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// Timeout is how long the circuit stays open.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// BulkheadConfig configures bulkhead behavior.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum concurrent generation calls.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
}

// StorageConfig selects a report backend.
type StorageConfig struct {
	// Backend is memory, filesystem, sqlite, postgres, redis, badger,
	// mongodb, dynamodb, s3, gcs or azblob.
	Backend string `json:"backend" yaml:"backend"`
	// SaveOnComplete persists the report when a session completes.
	SaveOnComplete bool `json:"save_on_complete,omitempty" yaml:"save_on_complete,omitempty"`

	Filesystem FilesystemConfig `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
	SQLite     SQLiteConfig     `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	Postgres   PostgresConfig   `json:"postgres,omitempty" yaml:"postgres,omitempty"`
	Redis      RedisConfig      `json:"redis,omitempty" yaml:"redis,omitempty"`
	Badger     BadgerConfig     `json:"badger,omitempty" yaml:"badger,omitempty"`
	MongoDB    MongoDBConfig    `json:"mongodb,omitempty" yaml:"mongodb,omitempty"`
	DynamoDB   DynamoDBConfig   `json:"dynamodb,omitempty" yaml:"dynamodb,omitempty"`
	S3         S3Config         `json:"s3,omitempty" yaml:"s3,omitempty"`
	GCS        GCSConfig        `json:"gcs,omitempty" yaml:"gcs,omitempty"`
	AzBlob     AzBlobConfig     `json:"azblob,omitempty" yaml:"azblob,omitempty"`
}

// FilesystemConfig configures the directory store.
type FilesystemConfig struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// PostgresConfig configures the PostgreSQL store.
type PostgresConfig struct {
	DSN    string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RedisConfig configures the Redis store.
type RedisConfig struct {
	Addr     string   `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int      `json:"db,omitempty" yaml:"db,omitempty"`
	Prefix   string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	TTL      Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// BadgerConfig configures the Badger store.
type BadgerConfig struct {
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	InMemory bool   `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`
}

// MongoDBConfig configures the MongoDB store.
type MongoDBConfig struct {
	URI        string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// DynamoDBConfig configures the DynamoDB store.
type DynamoDBConfig struct {
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// S3Config configures the S3 bucket store.
type S3Config struct {
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region          string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
}

// GCSConfig configures the Cloud Storage bucket store.
type GCSConfig struct {
	Bucket          string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix          string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	CredentialsFile string `json:"credentials_file,omitempty" yaml:"credentials_file,omitempty"`
}

// AzBlobConfig configures the Azure Blob container store.
type AzBlobConfig struct {
	AccountName      string `json:"account_name,omitempty" yaml:"account_name,omitempty"`
	AccountKey       string `json:"account_key,omitempty" yaml:"account_key,omitempty"`
	ConnectionString string `json:"connection_string,omitempty" yaml:"connection_string,omitempty"`
	Container        string `json:"container,omitempty" yaml:"container,omitempty"`
	Prefix           string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// SpeechConfig configures the speech gateway.
type SpeechConfig struct {
	Enabled      bool     `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	STTEndpoint  string   `json:"stt_endpoint,omitempty" yaml:"stt_endpoint,omitempty"`
	TTSEndpoint  string   `json:"tts_endpoint,omitempty" yaml:"tts_endpoint,omitempty"`
	GatewayToken string   `json:"gateway_token,omitempty" yaml:"gateway_token,omitempty"`
	Speed        float64  `json:"speed,omitempty" yaml:"speed,omitempty"`
	Timeout      Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures metrics and tracing.
type TelemetryConfig struct {
	Metrics bool          `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// TracingConfig configures trace export.
type TracingConfig struct {
	Enabled     bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Exporter    string  `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure    bool    `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	SampleRate  float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	ServiceName string  `json:"service_name,omitempty" yaml:"service_name,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// NotificationsConfig configures session webhooks.
type NotificationsConfig struct {
	Webhooks      []notification.Endpoint `json:"webhooks,omitempty" yaml:"webhooks,omitempty"`
	BatchSize     int                     `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	FlushInterval Duration                `json:"flush_interval,omitempty" yaml:"flush_interval,omitempty"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	return &Config{
		Session: SessionConfig{
			HistoryWindow: 10,
		},
		Generation: GenerationConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			BaseURL:     "https://api.avalai.ir/v1",
			Temperature: 0.7,
			MaxTokens:   300,
			Timeout:     Duration(60 * time.Second),
			Resilience: ResilienceConfig{
				Retry: RetryConfig{
					MaxAttempts:  3,
					InitialDelay: Duration(500 * time.Millisecond),
					Multiplier:   2.0,
				},
				CircuitBreaker: CircuitBreakerConfig{
					Threshold: 5,
					Timeout:   Duration(30 * time.Second),
				},
				Bulkhead: BulkheadConfig{
					MaxConcurrent: 8,
				},
			},
		},
		Storage: StorageConfig{
			Backend:    "filesystem",
			Filesystem: FilesystemConfig{Dir: "reports"},
		},
		Speech: SpeechConfig{
			STTEndpoint: "https://partai.gw.isahab.ir/speechRecognition/v1/base64",
			TTSEndpoint: "https://partai.gw.isahab.ir/TextToSpeech/v1/speech-synthesys",
			Speed:       1,
			Timeout:     Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Tracing: TracingConfig{
				Exporter:    "stdout",
				SampleRate:  1.0,
				ServiceName: "pitchroom",
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Notifications: NotificationsConfig{
			BatchSize:     50,
			FlushInterval: Duration(2 * time.Second),
		},
	}
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
