package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

func (a *App) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate the configuration that other commands would run with.

This command checks:
  - File format (YAML or JSON)
  - Phase names and durations
  - Provider and its required settings
  - Storage backend and its required settings
  - Tracing exporter and sample rate

Examples:
  pitchroom validate -c pitchroom.yaml
  pitchroom validate --provider mock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig()
		},
	}
}

func (a *App) validateConfig() error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	fmt.Fprintf(a.stdout, "  Provider: %s", cfg.Generation.Provider)
	if cfg.Generation.Model != "" {
		fmt.Fprintf(a.stdout, " (%s)", cfg.Generation.Model)
	}
	fmt.Fprintln(a.stdout)
	fmt.Fprintf(a.stdout, "  Storage: %s\n", cfg.Storage.Backend)

	durations := cfg.Session.Durations()
	phases := make([]negotiation.Phase, 0, len(durations))
	for p := range durations {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].Index() < phases[j].Index() })

	fmt.Fprintf(a.stdout, "\nPhases:\n")
	for _, p := range phases {
		fmt.Fprintf(a.stdout, "  - %s: %s\n", p, durations[p])
	}

	if cfg.Speech.Enabled {
		fmt.Fprintf(a.stdout, "  Speech: enabled\n")
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(a.stdout, "  Tracing: %s\n", cfg.Telemetry.Tracing.Exporter)
	}
	return nil
}
