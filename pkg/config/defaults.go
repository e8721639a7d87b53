package config

import "time"

// Default values applied by ApplyDefaults. Exported so tests and callers can
// reference the canonical defaults rather than restating literals.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20

	DefaultMaxIntentBytes = 256 << 10
	DefaultMaxStateBytes  = 1 << 20

	DefaultPolicyDir   = "./policies"
	DefaultEvalTimeout = 2 * time.Second

	DefaultExecutor        = "memory"
	DefaultDispatchTimeout = 30 * time.Second

	DefaultAuditBackend   = "sqlite"
	DefaultSQLitePath     = "data/audit.db"
	DefaultBusyTimeout    = 5 * time.Second
	DefaultFilePath       = "data/audit.jsonl"
	DefaultMaxAppendTries = 5
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
	DefaultSweepSchedule  = "0 3 * * *"

	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"
)

// DefaultConfig returns a fully populated configuration with all defaults
// applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in default values for any zero-valued fields. Booleans
// that default to true are handled in sections where the whole section being
// zero means "not configured".
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Intake.MaxIntentBytes == 0 {
		cfg.Intake.MaxIntentBytes = DefaultMaxIntentBytes
	}
	if cfg.Intake.MaxStateBytes == 0 {
		cfg.Intake.MaxStateBytes = DefaultMaxStateBytes
	}

	if cfg.Policy.Dir == "" {
		cfg.Policy.Dir = DefaultPolicyDir
	}

	if cfg.Gate.EvalTimeout == 0 {
		cfg.Gate.EvalTimeout = DefaultEvalTimeout
	}

	if cfg.Dispatch.Executor == "" {
		cfg.Dispatch.Executor = DefaultExecutor
	}
	if cfg.Dispatch.Timeout == 0 {
		cfg.Dispatch.Timeout = DefaultDispatchTimeout
	}

	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = DefaultAuditBackend
	}
	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.Audit.File.Path == "" {
		cfg.Audit.File.Path = DefaultFilePath
	}
	if cfg.Audit.MaxAppendTries == 0 {
		cfg.Audit.MaxAppendTries = DefaultMaxAppendTries
	}
	if cfg.Audit.InitialBackoff == 0 {
		cfg.Audit.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.Audit.MaxBackoff == 0 {
		cfg.Audit.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Audit.Sweep.Schedule == "" {
		cfg.Audit.Sweep.Enabled = true
		cfg.Audit.Sweep.Schedule = DefaultSweepSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
