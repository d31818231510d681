// Hybrid WMS Monitor
//
// Batch job that collects per-OU warehouse issue counts from the on-prem ERP
// and the cloud WMS, files incidents, persists the report and notifies.
// Meant to be run on a schedule (cron, Kubernetes CronJob).

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configPath string
	ouMapPath  string
	outDir     string
	runTimeArg string
	simulate   bool

	rootCmd = &cobra.Command{
		Use:   "wmsmonitor",
		Short: "Run one Hybrid WMS monitoring cycle",
		Long: `wmsmonitor collects stuck license plates, aging waves, stuck cloud tasks and
Fusion inventory exceptions per operating unit, files a ServiceNow incident for
every OU with issues, writes the report snapshot and history, then notifies
the configured sinks.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(slog.LevelInfo)
		},
		RunE: runCycle,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wmsmonitor %s (built %s)\n", version, buildTime)
		},
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "TOML config file (default: WMS_MONITOR_CONFIG or standard paths)")
	flags.StringVar(&ouMapPath, "ou-map", "", "OU registry JSON file (overrides OU_MAP_PATH)")
	flags.StringVar(&outDir, "out-dir", "", "directory for the snapshot and history files (overrides OUT_DIR)")
	flags.StringVar(&runTimeArg, "run-time", "", "fixed RFC3339 run time, for replays")
	flags.BoolVar(&simulate, "simulate", false, "use simulated backend adapters (overrides SIMULATE)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(secretsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

// setupLogging configures the slog default logger. It runs at info before
// config is loaded and again with the configured level afterwards.
func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
