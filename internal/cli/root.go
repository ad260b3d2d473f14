package cli

import (
	"fmt"
	"os"

	"github.com/rpggio/sitetrack/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd builds the sitetrack command tree.
func NewRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "sitetrack",
		Short: "Construction project tracker",
		Long: `sitetrack tracks construction projects across regions: budgets, schedules,
labour and material ledgers, with derived cost and progress figures.

Data lives in a remote document store with an on-device cache fallback.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				return os.Setenv("SITETRACK_CONFIG_PATH", configPath)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides SITETRACK_CONFIG_PATH)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newSummaryCmd())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}
