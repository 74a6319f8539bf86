package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/pitchroom"
	"github.com/felixgeelhaar/pitchroom/application"
	"github.com/felixgeelhaar/pitchroom/domain/config"
	"github.com/felixgeelhaar/pitchroom/domain/notification"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	infraconfig "github.com/felixgeelhaar/pitchroom/infrastructure/config"
	"github.com/felixgeelhaar/pitchroom/infrastructure/llm"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
	infranotification "github.com/felixgeelhaar/pitchroom/infrastructure/notification"
	"github.com/felixgeelhaar/pitchroom/infrastructure/observability"
	"github.com/felixgeelhaar/pitchroom/infrastructure/resilience"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage"
	"github.com/felixgeelhaar/pitchroom/infrastructure/telemetry"
)

// runtime is everything a command needs to run sessions.
type runtime struct {
	cfg      *config.Config
	loader   *infraconfig.Loader
	manager  *application.Manager
	store    report.Store
	obs      *observability.Provider
	metrics  telemetry.Metrics
	notifier notification.Notifier

	closers []func(context.Context) error
}

// loadConfig reads the configuration, applies flag overrides and validates
// the result.
func (a *App) loadConfig() (*config.Config, *infraconfig.Loader, error) {
	loader := infraconfig.NewLoaderWithOptions(
		infraconfig.WithDotEnv(a.global.envFiles...),
		infraconfig.WithValidation(false),
	)
	cfg, err := loader.LoadOrDefault(a.global.configPath)
	if err != nil {
		return nil, nil, err
	}
	a.applyOverrides(cfg)

	if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, errs)
	}
	return cfg, loader, nil
}

func (a *App) applyOverrides(cfg *config.Config) {
	if a.global.provider != "" {
		cfg.Generation.Provider = a.global.provider
	}
	if a.global.backend != "" {
		cfg.Storage.Backend = a.global.backend
	}
	if a.global.logLevel != "" {
		cfg.Logging.Level = a.global.logLevel
	}
}

// buildRuntime wires logging, tracing, metrics, storage and the generator
// into a session manager. Callers must Close the runtime.
func (a *App) buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, loader, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	initLogging(cfg.Logging, a.stderr)

	rt := &runtime{cfg: cfg, loader: loader}

	obs, err := observability.New(append(
		observability.FromConfig(cfg.Telemetry),
		observability.WithServiceVersion(pitchroom.GetVersion()),
	)...)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	rt.obs = obs
	rt.closers = append(rt.closers, obs.Shutdown)

	rt.metrics = &telemetry.NoopMetricsProvider{}
	if cfg.Telemetry.Metrics {
		rt.metrics = telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())
	}

	store, closeStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	rt.store = store
	rt.closers = append(rt.closers, func(context.Context) error { return closeStore() })

	rt.notifier = notification.NopNotifier{}
	if hooks := cfg.Notifications; len(hooks.Webhooks) > 0 {
		wn := infranotification.NewWebhookNotifier(infranotification.WebhookNotifierConfig{
			Endpoints: hooks.Webhooks,
			BatcherConfig: infranotification.BatcherConfig{
				MaxBatchSize: hooks.BatchSize,
				MaxWait:      hooks.FlushInterval.Duration(),
			},
			SenderConfig: infranotification.DefaultSenderConfig(),
		})
		rt.notifier = wn
		rt.closers = append(rt.closers, wn.Close)
	}

	provider, err := llm.NewProvider(cfg.Generation)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	rt.track(provider)

	rt.manager = application.NewManager(rt.sessionOptions(provider)...)

	logging.Info().
		Add(logging.Provider(provider.Name())).
		Add(logging.Backend(cfg.Storage.Backend)).
		Msg("runtime ready")
	return rt, nil
}

// sessionOptions derives the manager options from the current config.
func (rt *runtime) sessionOptions(provider llm.Provider) []application.Option {
	cfg := rt.cfg
	executor := resilience.NewExecutorWithOptions(resilience.FromGeneration(cfg.Generation)...)
	gen := llm.NewGenerator(provider, executor, llm.GeneratorConfig{
		Model:         cfg.Generation.Model,
		Temperature:   cfg.Generation.Temperature,
		MaxTokens:     cfg.Generation.MaxTokens,
		HistoryWindow: cfg.Session.HistoryWindow,
	})

	return []application.Option{
		application.WithGenerator(gen),
		application.WithDurations(cfg.Session.Durations()),
		application.WithClampScores(cfg.Session.ClampScores),
		application.WithMetrics(rt.metrics),
		application.WithTracer(rt.obs.Tracer()),
		application.WithStore(rt.store, cfg.Storage.Backend),
		application.WithSaveOnComplete(cfg.Storage.SaveOnComplete),
		application.WithNotifier(rt.notifier),
	}
}

// reconfigure applies a reloaded config to sessions started from now on.
// Storage, tracing and webhooks stay as they were opened.
func (rt *runtime) reconfigure(cfg *config.Config) error {
	cfg.Storage = rt.cfg.Storage
	cfg.Telemetry = rt.cfg.Telemetry
	cfg.Notifications = rt.cfg.Notifications

	provider, err := llm.NewProvider(cfg.Generation)
	if err != nil {
		return err
	}
	rt.track(provider)
	rt.cfg = cfg
	rt.manager.Configure(rt.sessionOptions(provider)...)
	logging.SetLevel(cfg.Logging.Level)
	return nil
}

// track registers providers that hold a process open.
func (rt *runtime) track(provider llm.Provider) {
	if p, ok := provider.(*llm.CopilotProvider); ok {
		rt.closers = append(rt.closers, func(context.Context) error { return p.Stop() })
	}
}

func initLogging(c config.LoggingConfig, w io.Writer) {
	lc := logging.DefaultConfig()
	if c.Level != "" {
		lc.Level = c.Level
	}
	if c.Format != "" {
		lc.Format = c.Format
	}
	lc.Output = w
	logging.Init(lc)
}

// Close releases everything in reverse order of acquisition.
func (rt *runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
