package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/pitchroom/domain/config"
	infraconfig "github.com/felixgeelhaar/pitchroom/infrastructure/config"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
	"github.com/felixgeelhaar/pitchroom/infrastructure/observability"
	"github.com/felixgeelhaar/pitchroom/interfaces/api"
)

type serveOptions struct {
	addr  string
	watch bool
}

func (a *App) newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sessions over HTTP",
		Long: `Serve the session API over HTTP.

Routes:
  POST /sessions                  start a session
  POST /sessions/{id}/turns       send a founder message
  GET  /sessions/{id}             session status
  GET  /sessions/{id}/report      current report (?format=json|text)
  POST /sessions/{id}/end         end a session
  GET  /reports                   list saved reports
  GET  /reports/{id}              one saved report

With --watch, edits to the configuration file apply to sessions started
after the change.

Examples:
  pitchroom serve -c pitchroom.yaml --addr :8080 --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the configuration file on change")

	return cmd
}

func (a *App) serve(ctx context.Context, opts *serveOptions) error {
	if opts.watch && a.global.configPath == "" {
		return fmt.Errorf("--watch requires a configuration file (-c flag)")
	}

	rt, err := a.buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.WithoutCancel(ctx)) }()

	addr := rt.cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           observability.HTTPMiddleware(rt.obs.Tracer(), api.NewHandler(rt.manager, rt.store)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info().Add(logging.Str("addr", addr)).Msg("serving HTTP API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if opts.watch {
		w := infraconfig.NewWatcher(rt.loader, a.global.configPath,
			func(cfg *config.Config) { a.reload(rt, cfg) },
			func(err error) {
				logging.Warn().Add(logging.Component("config")).Add(logging.ErrorField(err)).Msg("config reload failed")
			},
		)
		g.Go(func() error { return w.Run(ctx) })
	}

	return g.Wait()
}

func (a *App) reload(rt *runtime, cfg *config.Config) {
	a.applyOverrides(cfg)
	if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
		logging.Warn().Add(logging.Component("config")).Add(logging.ErrorField(errs)).Msg("ignoring invalid config")
		return
	}
	if err := rt.reconfigure(cfg); err != nil {
		logging.Warn().Add(logging.Component("config")).Add(logging.ErrorField(err)).Msg("config reload failed")
		return
	}
	logging.Info().Add(logging.Component("config")).Msg("config reloaded")
}
