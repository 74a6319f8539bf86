package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pitchroom"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
	"github.com/felixgeelhaar/pitchroom/infrastructure/mcp"
)

type mcpOptions struct {
	httpAddr string
}

func (a *App) newMCPCmd() *cobra.Command {
	opts := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve sessions as MCP tools",
		Long: `Expose sessions to MCP clients. By default the server speaks over
stdin/stdout; use --http to listen on an address instead.

Tools: start_session, process_turn, session_status, final_report,
export_report.

Examples:
  pitchroom mcp -c pitchroom.yaml
  pitchroom mcp -c pitchroom.yaml --http :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serveMCP(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve over HTTP on this address instead of stdio")

	return cmd
}

func (a *App) serveMCP(ctx context.Context, opts *mcpOptions) error {
	rt, err := a.buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.WithoutCancel(ctx)) }()

	srv := mcp.NewServer(mcp.ServerConfig{
		Name:    "pitchroom",
		Version: pitchroom.GetVersion(),
		Manager: rt.manager,
	})
	srv.Use(mcp.Recover(), mcp.RequestID())

	if opts.httpAddr != "" {
		logging.Info().Add(logging.Str("addr", opts.httpAddr)).Msg("serving MCP over HTTP")
		return srv.ServeHTTP(ctx, opts.httpAddr)
	}
	return srv.ServeStdio(ctx)
}
