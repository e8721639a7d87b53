package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path, applies
// default values, applies environment variable overrides, and validates the
// result. Environment variables follow the naming convention
// JANUS_SECTION_FIELD (e.g., JANUS_SERVER_LISTEN_ADDRESS) and always take
// precedence over file-based configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Unparseable values are ignored; validation reports the
// file-based value instead.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("JANUS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("JANUS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("JANUS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("JANUS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	if val := os.Getenv("JANUS_POLICY_DIR"); val != "" {
		cfg.Policy.Dir = val
	}
	if val := os.Getenv("JANUS_POLICY_ACTIVE_VERSION"); val != "" {
		cfg.Policy.ActiveVersion = val
	}
	if val := os.Getenv("JANUS_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = b
		}
	}

	if val := os.Getenv("JANUS_GATE_EVAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Gate.EvalTimeout = d
		}
	}

	if val := os.Getenv("JANUS_DISPATCH_EXECUTOR"); val != "" {
		cfg.Dispatch.Executor = val
	}
	if val := os.Getenv("JANUS_DISPATCH_ENDPOINT"); val != "" {
		cfg.Dispatch.Endpoint = val
	}
	if val := os.Getenv("JANUS_DISPATCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Dispatch.Timeout = d
		}
	}

	if val := os.Getenv("JANUS_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("JANUS_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("JANUS_AUDIT_FILE_PATH"); val != "" {
		cfg.Audit.File.Path = val
	}
	if val := os.Getenv("JANUS_AUDIT_SWEEP_SCHEDULE"); val != "" {
		cfg.Audit.Sweep.Schedule = val
	}

	if val := os.Getenv("JANUS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("JANUS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("JANUS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}
