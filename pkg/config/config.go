package config

import "time"

// Config is the root configuration structure for Janus. It contains all
// sections for the HTTP server, intake limits, policy loading, gate
// evaluation, dispatch, audit storage, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Intake contains input validation limits.
	Intake IntakeConfig `yaml:"intake"`

	// Policy contains configuration for policy-set loading including the
	// source directory, the active version, and watch mode.
	Policy PolicyConfig `yaml:"policy"`

	// Gate contains execution-cycle configuration.
	Gate GateConfig `yaml:"gate"`

	// Dispatch contains executor configuration.
	Dispatch DispatchConfig `yaml:"dispatch"`

	// Audit contains configuration for audit record storage including
	// backend selection and chain verification.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration including logging
	// and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// IntakeConfig contains input validation limits.
type IntakeConfig struct {
	// MaxIntentBytes is the maximum accepted size of a raw intent document.
	// Default: 262144 (256KB)
	MaxIntentBytes int `yaml:"max_intent_bytes"`

	// MaxStateBytes is the maximum accepted size of a referenced-state
	// document.
	// Default: 1048576 (1MB)
	MaxStateBytes int `yaml:"max_state_bytes"`
}

// PolicyConfig contains configuration for policy-set loading.
type PolicyConfig struct {
	// Dir is the directory holding policy-set YAML files. Every .yaml and
	// .yml file in it is loaded into the registry at startup.
	// Default: "./policies"
	Dir string `yaml:"dir"`

	// ActiveVersion is the policy-set version new cycles are evaluated
	// under. Required; there is no implicit "latest".
	ActiveVersion string `yaml:"active_version"`

	// Watch enables filesystem watching of Dir so new policy-set versions
	// become available without a restart. Published versions are immutable;
	// an edited file for an existing version is rejected.
	// Default: false
	Watch bool `yaml:"watch"`
}

// GateConfig contains execution-cycle configuration.
type GateConfig struct {
	// EvalTimeout bounds a single policy evaluation. An evaluation that
	// exceeds it halts the cycle.
	// Default: 2s
	EvalTimeout time.Duration `yaml:"eval_timeout"`
}

// DispatchConfig contains executor configuration.
type DispatchConfig struct {
	// Executor selects the dispatch backend.
	// Options: "http", "memory"
	// Default: "memory"
	Executor string `yaml:"executor"`

	// Endpoint is the executor URL when Executor is "http".
	Endpoint string `yaml:"endpoint"`

	// Timeout is the maximum duration for a single dispatch call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// AuditConfig contains configuration for audit record storage.
type AuditConfig struct {
	// Backend specifies the storage backend for audit records.
	// Options: "sqlite", "file", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// File contains append-only file backend configuration.
	File FileConfig `yaml:"file"`

	// MaxAppendTries is the number of attempts per record before the sink
	// is declared unavailable.
	// Default: 5
	MaxAppendTries int `yaml:"max_append_tries"`

	// InitialBackoff is the first retry delay for a failed append.
	// Default: 100ms
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// MaxBackoff caps the retry delay.
	// Default: 5s
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// Sweep contains chain verification schedule configuration.
	Sweep SweepConfig `yaml:"sweep"`
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the file path for the SQLite database.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// FileConfig contains append-only file backend configuration.
type FileConfig struct {
	// Path is the JSONL file audit records are appended to.
	// Default: "data/audit.jsonl"
	Path string `yaml:"path"`
}

// SweepConfig contains chain verification schedule configuration.
type SweepConfig struct {
	// Enabled controls whether periodic chain verification runs.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression for the verification sweep.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether the Prometheus endpoint is served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
