package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rpggio/sitetrack/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		state     string
		rng       string
		labours   bool
		materials bool
		format    string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects to a spreadsheet or CSV",
		Long: `Export projects with optional labour and material sheets.

Examples:
  sitetrack export                                  # current month, all states, xlsx
  sitetrack export --state Delhi --range currentQuarter --labours --materials
  sitetrack export --format csv --output -          # CSV to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := export.ParseRange(rng)
			if err != nil {
				return err
			}
			if format != "xlsx" && format != "csv" {
				return fmt.Errorf("unknown format %q", format)
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
			app.Load(cmd.Context())

			filter := export.Filter{State: state, Range: r, IncludeLabours: labours, IncludeMaterials: materials}
			now := time.Now()
			report, err := export.Build(app.Store.Snapshot(), filter, now)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if format == "csv" {
				err = export.WriteCSV(&buf, report)
			} else {
				err = export.WriteXLSX(&buf, report)
			}
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = io.Copy(cmd.OutOrStdout(), &buf)
				return err
			}
			if output == "" {
				output = export.FileName(filter, now, format)
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d project(s), total %s, to %s\n",
				report.Projects, export.FormatINR(report.TotalValue), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&state, "state", "s", "all", "State to export, or all")
	cmd.Flags().StringVarP(&rng, "range", "r", string(export.RangeCurrentMonth), "Date range: currentMonth, lastMonth, currentQuarter, all")
	cmd.Flags().BoolVar(&labours, "labours", false, "Include the labour sheet")
	cmd.Flags().BoolVar(&materials, "materials", false, "Include the material sheet")
	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "Output format: xlsx, csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: generated name)")
	return cmd
}
