package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/backend"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/leader"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/metrics"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/secrets"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/incident"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/notification"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/pipeline"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/registry"
)

func runCycle(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting Hybrid WMS Monitor",
		"version", version,
		"build_time", buildTime)

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.SlogLevel())

	var fixedRunTime time.Time
	if runTimeArg != "" {
		fixedRunTime, err = time.Parse(time.RFC3339, runTimeArg)
		if err != nil {
			return fmt.Errorf("invalid --run-time %q: %w", runTimeArg, err)
		}
	}

	// ========================================
	// 1. RUN LOCK
	// ========================================
	lock, err := acquireRunLock(ctx, cfg)
	if errors.Is(err, leader.ErrLockHeld) {
		slog.Info("Another run holds the lock, exiting", "error", err)
		return nil
	}
	if err != nil {
		return err
	}
	if lock != nil {
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := lock.Release(releaseCtx); err != nil {
				slog.Warn("Failed to release run lock", "error", err)
			}
			lock.Close()
		}()
	}

	// ========================================
	// 2. COMPONENT WIRING
	// ========================================
	sources, err := backend.NewSet(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up backend adapters: %w", err)
	}
	defer sources.Close()

	pipe := pipeline.New(pipeline.Config{
		Registry:     registry.Load(cfg.OUMapPath),
		Sources:      sources,
		Filer:        incident.NewFiler(cfg.Ticketing, cfg.HTTPTimeout),
		Dispatcher:   notification.NewDispatcher(cfg.HTTPTimeout, notification.FromConfig(cfg)...),
		SnapshotPath: cfg.SnapshotPath(),
		HistoryPath:  cfg.HistoryPath(),
		RunTime:      fixedRunTime,
	})

	// ========================================
	// 3. RUN
	// ========================================
	result, runErr := pipe.Run(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			slog.Warn("Failed to push metrics", "error", err, "url", cfg.Metrics.PushgatewayURL)
		}
		cancel()
	}

	if runErr != nil {
		return runErr
	}

	return printRows(cmd.OutOrStdout(), result)
}

// loadConfig layers .env, environment, the TOML file, flags and secrets
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		slog.Warn("Ignoring environment file", "error", err)
	}

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("ou-map") {
		cfg.OUMapPath = ouMapPath
	}
	if flags.Changed("out-dir") {
		cfg.OutDir = outDir
	}
	if flags.Changed("simulate") {
		cfg.Simulate = simulate
	}

	provider, err := secrets.NewProvider(ctx, secrets.LoadConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets provider: %w", err)
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}
	if err := cfg.ResolveSecrets(ctx, provider); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"simulate", cfg.Simulate,
		"ouMap", cfg.OUMapPath,
		"outDir", cfg.OutDir)
	return cfg, nil
}

// acquireRunLock takes the Redis run lock when REDIS_URL is set. Returns a
// nil lock when locking is off or Redis cannot be reached.
func acquireRunLock(ctx context.Context, cfg *config.Config) (*leader.RunLock, error) {
	if cfg.RunLock.RedisURL == "" {
		return nil, nil
	}

	client, err := leader.Dial(cfg.RunLock.RedisURL)
	if err != nil {
		return nil, err
	}

	lock := leader.NewRunLock(client, leader.RunLockConfig{
		LockName: cfg.RunLock.LockName,
		TTL:      cfg.RunLock.TTL,
	})

	acquireCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := lock.Acquire(acquireCtx); err != nil {
		lock.Close()
		if errors.Is(err, leader.ErrLockHeld) {
			return nil, err
		}
		slog.Warn("Run lock unavailable, proceeding without it", "error", err)
		return nil, nil
	}
	return lock, nil
}

// printRows writes the report rows to stdout as indented JSON
func printRows(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Report.Rows); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}
	return nil
}
