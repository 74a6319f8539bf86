// Package cli provides the pitchroom command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pitchroom"
)

// Version information set at build time.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	global globalOptions
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	envFiles   []string
	provider   string
	backend    string
	logLevel   string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "pitchroom",
		Short: "Timed multi-party pitch negotiation simulator",
		Long: `pitchroom runs a timed negotiation between a founder and three investors
while an evaluator scores the founder's performance.

A session moves through introduction, presentation, negotiation and final
negotiation phases, and ends with a report of the deal and the scores.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := app.root.PersistentFlags()
	flags.StringVarP(&app.global.configPath, "config", "c", "", "Path to configuration file (YAML or JSON)")
	flags.StringSliceVar(&app.global.envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading configuration")
	flags.StringVar(&app.global.provider, "provider", "", "Generation provider (overrides config)")
	flags.StringVar(&app.global.backend, "storage", "", "Report storage backend (overrides config)")
	flags.StringVar(&app.global.logLevel, "log-level", "", "Log level (overrides config)")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newValidateCmd(),
		app.newPlayCmd(),
		app.newServeCmd(),
		app.newMCPCmd(),
		app.newReportsCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithInput sets the reader the play command reads founder messages from.
func (a *App) WithInput(stdin io.Reader) *App {
	a.stdin = stdin
	a.root.SetIn(stdin)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pitchroom version %s\n", pitchroom.GetVersion())
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}
