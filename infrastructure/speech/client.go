// Package speech talks to the speech gateway for transcription and synthesis.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/pitchroom/domain/config"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Errors
var (
	// ErrTranscription is returned when speech cannot be turned into text.
	ErrTranscription = errors.New("speech: transcription failed")

	// ErrSynthesis is returned when text cannot be turned into audio.
	ErrSynthesis = errors.New("speech: synthesis failed")

	// ErrGatewayRejected marks 4xx responses, which are not retried.
	ErrGatewayRejected = errors.New("speech: gateway rejected request")
)

// Language is the transcription language sent to the gateway.
const Language = "fa"

// SpeakerSystem is the voice used for moderator messages.
const SpeakerSystem = 3

var speakers = map[negotiation.Role]int{
	negotiation.RoleConservativeInvestor: 2,
	negotiation.RoleRiskyInvestor:        0,
	negotiation.RoleCompetitor:           1,
	negotiation.RoleEvaluator:            3,
}

// SpeakerFor returns the gateway voice for a counterpart.
func SpeakerFor(role negotiation.Role) int {
	if s, ok := speakers[role]; ok {
		return s
	}
	return SpeakerSystem
}

// Config configures the gateway client.
type Config struct {
	STTEndpoint  string
	TTSEndpoint  string
	GatewayToken string
	Speed        float64
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// FromConfig maps the speech section of the application config.
func FromConfig(c config.SpeechConfig) Config {
	return Config{
		STTEndpoint:  c.STTEndpoint,
		TTSEndpoint:  c.TTSEndpoint,
		GatewayToken: c.GatewayToken,
		Speed:        c.Speed,
		Timeout:      c.Timeout.Duration(),
	}
}

// Client calls the STT and TTS gateways.
type Client struct {
	config  Config
	http    *http.Client
	retrier retry.Retry[[]byte]
}

// New creates a gateway client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		config: cfg,
		http:   httpClient,
		retrier: retry.New[[]byte](retry.Config{
			MaxAttempts:   cfg.MaxRetries,
			InitialDelay:  cfg.RetryDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    2.0,
			// Client errors won't succeed on retry
			NonRetryableErrors: []error{ErrGatewayRejected, context.Canceled, context.DeadlineExceeded},
		}),
	}
}

type sttRequest struct {
	Language string `json:"language"`
	Data     string `json:"data"`
}

type ttsRequest struct {
	Data     string `json:"data"`
	FilePath string `json:"filePath"`
	Base64   string `json:"base64"`
	Checksum string `json:"checksum"`
	Speaker  string `json:"speaker"`
	Speed    string `json:"speed"`
}

// envelope is the gateway's response wrapper.
type envelope struct {
	Data struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	} `json:"data"`
}

// Transcribe converts recorded audio to text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", ErrTranscription)
	}

	payload, err := json.Marshal(sttRequest{
		Language: Language,
		Data:     base64.StdEncoding.EncodeToString(audio),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	body, err := c.post(ctx, c.config.STTEndpoint, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	data, err := successData(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return "", fmt.Errorf("%w: unexpected payload: %w", ErrTranscription, err)
	}
	return strings.TrimSpace(text), nil
}

// Synthesize converts text to audio in the given voice.
func (c *Client) Synthesize(ctx context.Context, text string, speaker int) ([]byte, error) {
	payload, err := json.Marshal(ttsRequest{
		Data:     text,
		FilePath: "true",
		Base64:   "1",
		Checksum: "1",
		Speaker:  strconv.Itoa(speaker),
		Speed:    strconv.FormatFloat(c.config.Speed, 'f', -1, 64),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	body, err := c.post(ctx, c.config.TTSEndpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	data, err := successData(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}

	var file struct {
		FilePath string `json:"filePath"`
	}
	if err := json.Unmarshal(data, &file); err != nil || file.FilePath == "" {
		return nil, fmt.Errorf("%w: no filePath in response", ErrSynthesis)
	}

	url := file.FilePath
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	audio, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: download audio: %w", ErrSynthesis, err)
	}
	return audio, nil
}

func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, payload)
}

// do runs one gateway request with retries on transport and 5xx failures.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	return c.retrier.Do(ctx, func(ctx context.Context) ([]byte, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGatewayRejected, err)
		}
		req.Header.Set("gateway-token", c.config.GatewayToken)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, truncate(data))
		default:
			return nil, fmt.Errorf("%w: status %d: %s", ErrGatewayRejected, resp.StatusCode, truncate(data))
		}
	})
}

func successData(body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if env.Data.Status != "success" {
		return nil, fmt.Errorf("gateway status %q", env.Data.Status)
	}
	return env.Data.Data, nil
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit])
	}
	return string(b)
}
