package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sentinel-hq/janus/pkg/audit"
	"sentinel-hq/janus/pkg/config"
	"sentinel-hq/janus/pkg/dispatch"
	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/intake"
	"sentinel-hq/janus/pkg/policy"
	"sentinel-hq/janus/pkg/server"
	"sentinel-hq/janus/pkg/telemetry/logging"
	"sentinel-hq/janus/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gate server",
	Long: `Start the gate server with the specified configuration.

The server loads every policy set from the configured directory, pins the
active version, and accepts intent submissions on /v1/intents. Each
submission runs one full execution cycle ending in an audit record.

Examples:
  # Start with default config
  janus run

  # Start with custom config
  janus run --config /etc/janus/config.yaml

  # Override listen address
  janus run --listen 0.0.0.0:8080

  # Validate config without starting the server
  janus run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Policy registry. The active version must load or the gate cannot
	// decide anything.
	registry := policy.NewRegistry()
	if err := registry.LoadDir(cfg.Policy.Dir); err != nil {
		return fmt.Errorf("failed to load policy sets from %q: %w", cfg.Policy.Dir, err)
	}
	if _, err := registry.Get(cfg.Policy.ActiveVersion); err != nil {
		return fmt.Errorf("active policy set %q: %w", cfg.Policy.ActiveVersion, err)
	}
	logger.Info("policy sets loaded",
		"dir", cfg.Policy.Dir,
		"versions", registry.Versions(),
		"active", cfg.Policy.ActiveVersion,
	)

	if cfg.Policy.Watch {
		watcher, err := policy.NewWatcher(registry, cfg.Policy.Dir)
		if err != nil {
			return fmt.Errorf("failed to create policy watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start policy watcher: %w", err)
		}
		defer watcher.Stop()
	}

	// Audit path: sink, chained recorder, scheduled chain verification.
	sink, archive, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	m := metrics.New()
	recorder := audit.NewRecorder(sink, m, &audit.Config{
		MaxAppendTries: uint(cfg.Audit.MaxAppendTries),
		InitialBackoff: cfg.Audit.InitialBackoff,
		MaxBackoff:     cfg.Audit.MaxBackoff,
	})

	if cfg.Audit.Sweep.Enabled && archive != nil {
		sweeper := audit.NewSweeper(archive, cfg.Audit.Sweep.Schedule)
		if err := sweeper.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	// Dispatch path.
	var executor dispatch.Executor
	switch cfg.Dispatch.Executor {
	case "http":
		httpCfg := dispatch.DefaultHTTPConfig(cfg.Dispatch.Endpoint)
		httpCfg.Timeout = cfg.Dispatch.Timeout
		executor = dispatch.NewHTTPExecutor(httpCfg)
	case "memory":
		executor = dispatch.NewMemoryExecutor()
	default:
		return fmt.Errorf("unsupported dispatch executor: %s", cfg.Dispatch.Executor)
	}

	validator := intake.NewValidator(&intake.Config{
		MaxIntentBytes: cfg.Intake.MaxIntentBytes,
		MaxStateBytes:  cfg.Intake.MaxStateBytes,
	})

	controller := gate.NewController(validator, registry, executor, recorder, m, &gate.Config{
		PolicySetVersion: cfg.Policy.ActiveVersion,
		EvalTimeout:      cfg.Gate.EvalTimeout,
	})

	srv := server.NewServer(cfg, controller, recorder)
	return srv.Start(ctx)
}

// openSink builds the configured audit sink. The second return is the same
// backend's read side when it has one; the sweeper needs it, the recorder
// never touches it.
func openSink(cfg *config.Config) (audit.Sink, audit.Archive, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		s, err := audit.NewSQLiteSink(&audit.SQLiteConfig{
			Path:        cfg.Audit.SQLite.Path,
			BusyTimeout: cfg.Audit.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite audit sink: %w", err)
		}
		return s, s, nil
	case "file":
		s, err := audit.NewFileSink(cfg.Audit.File.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file audit sink: %w", err)
		}
		return s, s, nil
	case "memory":
		s := audit.NewMemorySink()
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}
