package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/export"
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print dashboard totals and a rollup",
		Long: `Print totals across all projects, a rollup table and upcoming deadlines.

Examples:
  sitetrack summary
  sitetrack summary --by engineer`,
		RunE: func(cmd *cobra.Command, args []string) error {
			group := metrics.GroupBy(by)
			if !group.Valid() {
				return fmt.Errorf("unknown grouping %q", by)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog := newLogger(cfg.Log.Level, cfg.Log.Path, true)
			defer closeLog()

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			result := app.Load(cmd.Context())

			snapshot := app.Store.Snapshot()
			var groups []metrics.Group
			if group == metrics.GroupByState {
				groups = app.Engine.StateOverview(cfg.States, snapshot)
			} else {
				groups = app.Engine.Rollup(snapshot, group)
			}
			source := string(result.Source)
			if saved, err := app.Cache.UpdatedAt(cmd.Context()); err == nil {
				source += ", cache saved " + saved.Local().Format(time.DateTime)
			}
			printSummary(cmd.OutOrStdout(), source,
				app.Engine.Totals(snapshot), group, groups,
				app.Engine.UpcomingDeadlines(snapshot, cfg.Deadlines.WindowDays))
			return nil
		},
	}
	cmd.Flags().StringVarP(&by, "by", "b", string(metrics.GroupByState), "Rollup field: state, status, engineer")
	return cmd
}

func printSummary(out io.Writer, source string, totals metrics.Totals, by metrics.GroupBy, groups []metrics.Group, upcoming []metrics.DeadlineAlert) {
	fmt.Fprintf(out, "Source:        %s\n", source)
	fmt.Fprintf(out, "Projects:      %d (active %d, completed %d, delayed %d)\n",
		totals.Projects, totals.Active, totals.Completed, totals.Delayed)
	fmt.Fprintf(out, "Total value:   %s\n", export.FormatINR(totals.TotalValue))
	fmt.Fprintf(out, "Labour cost:   %s\n", export.FormatINR(totals.LabourCost))
	fmt.Fprintf(out, "Material cost: %s\n", export.FormatINR(totals.MaterialCost))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPROJECTS\tVALUE\tCOMPLETED\n", headerFor(by))
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%d\t%s\t%.0f%%\n", g.Key, g.Count, export.FormatINR(g.TotalValue), g.CompletionRate*100)
	}
	w.Flush()

	if len(upcoming) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Upcoming deadlines:")
	for _, a := range upcoming {
		fmt.Fprintf(out, "  %s (%s) due %s, %d day(s) left\n", a.Name, a.State, a.TargetDate, a.DaysLeft)
	}
}

func headerFor(by metrics.GroupBy) string {
	switch by {
	case metrics.GroupByStatus:
		return "STATUS"
	case metrics.GroupByEngineer:
		return "ENGINEER"
	default:
		return "STATE"
	}
}
