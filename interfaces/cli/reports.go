package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pitchroom/domain/analytics"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	infraanalytics "github.com/felixgeelhaar/pitchroom/infrastructure/analytics"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage"
	"github.com/felixgeelhaar/pitchroom/interfaces/api"
)

type reportsListOptions struct {
	sessionID string
	closed    string
	since     time.Duration
	limit     int
}

func (a *App) newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect saved reports",
	}
	cmd.AddCommand(a.newReportsListCmd(), a.newReportsShowCmd(), a.newReportsStatsCmd())
	return cmd
}

func (a *App) newReportsListCmd() *cobra.Command {
	opts := &reportsListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Example: `  pitchroom reports list -c pitchroom.yaml
  pitchroom reports list --closed true --since 168h --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listReports(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.sessionID, "session", "", "Only reports of this session")
	cmd.Flags().StringVar(&opts.closed, "closed", "", "Filter by outcome (true or false)")
	cmd.Flags().DurationVar(&opts.since, "since", 0, "Only reports newer than this")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum number of reports")

	return cmd
}

func (a *App) newReportsShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Print one saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showReport(cmd.Context(), args[0], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")

	return cmd
}

func (a *App) newReportsStatsCmd() *cobra.Command {
	var (
		groupBy string
		since   time.Duration
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize saved reports",
		Example: `  pitchroom reports stats -c pitchroom.yaml
  pitchroom reports stats --group-by week --since 720h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := analytics.Filter{GroupBy: analytics.GroupBy(groupBy)}
			if !filter.GroupBy.IsValid() {
				return fmt.Errorf("--group-by must be day, week or month")
			}
			if since > 0 {
				filter.FromTime = time.Now().Add(-since)
			}
			return a.reportStats(cmd.Context(), filter, asJSON)
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", "", "Trend bucket (day, week or month)")
	cmd.Flags().DurationVar(&since, "since", 0, "Only reports newer than this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

// withStore opens only the configured report store.
func (a *App) withStore(ctx context.Context, fn func(report.Store) error) error {
	cfg, _, err := a.loadConfig()
	if err != nil {
		return err
	}
	initLogging(cfg.Logging, a.stderr)

	store, closeStore, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	defer func() { _ = closeStore() }()

	return fn(store)
}

func (a *App) listReports(ctx context.Context, opts *reportsListOptions) error {
	filter := report.ListFilter{SessionID: opts.sessionID, Limit: opts.limit}
	switch opts.closed {
	case "":
	case "true", "false":
		closed := opts.closed == "true"
		filter.DealClosed = &closed
	default:
		return fmt.Errorf("--closed must be true or false")
	}
	if opts.since > 0 {
		filter.FromTime = time.Now().Add(-opts.since)
	}

	return a.withStore(ctx, func(store report.Store) error {
		reports, err := store.List(ctx, filter)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Fprintln(a.stdout, "No reports found.")
			return nil
		}

		w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tDEAL\tGRADE\tSCORE")
		for _, r := range reports {
			deal := "no"
			if r.NegotiationResult.DealClosed {
				deal = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f%%\n",
				r.ID,
				r.SessionInfo.Date.Format("2006-01-02 15:04"),
				deal,
				r.PerformanceEvaluation.Grade,
				r.PerformanceEvaluation.Percentage,
			)
		}
		return w.Flush()
	})
}

func (a *App) showReport(ctx context.Context, id, format string) error {
	return a.withStore(ctx, func(store report.Store) error {
		r, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		data, err := report.Export(r, format)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, string(data))
		return nil
	})
}

func (a *App) reportStats(ctx context.Context, filter analytics.Filter, asJSON bool) error {
	return a.withStore(ctx, func(store report.Store) error {
		stats, err := api.CollectStats(ctx, infraanalytics.NewAggregator(store), filter)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		o := stats.Outcomes
		fmt.Fprintf(a.stdout, "Sessions: %d\n", o.TotalSessions)
		fmt.Fprintf(a.stdout, "Deals closed: %d (%.1f%%)\n", o.DealsClosed, o.CloseRate)
		fmt.Fprintf(a.stdout, "Average score: %.1f%%\n", o.AveragePercentage)
		if o.DealsClosed > 0 {
			fmt.Fprintf(a.stdout, "Average success rate: %.1f%%\n", o.AverageSuccessRate)
		}

		w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\nPHASE\tSESSIONS\tSHARE")
		for _, p := range stats.Phases {
			fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", p.Phase, p.Sessions, p.Percentage)
		}
		fmt.Fprintln(w, "\nROLE\tSATISFACTION")
		for _, r := range stats.Roles {
			fmt.Fprintf(w, "%s\t%.1f\n", r.Role.DisplayName(), r.AverageSatisfaction)
		}
		if len(stats.Trend) > 0 {
			fmt.Fprintln(w, "\nPERIOD\tSESSIONS\tCLOSED\tSCORE")
			for _, t := range stats.Trend {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.1f%%\n", t.Period.Format("2006-01-02"), t.TotalSessions, t.DealsClosed, t.AveragePercentage)
			}
		}
		return w.Flush()
	})
}
