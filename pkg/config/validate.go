package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in one pass so operators
// can fix a config file in a single edit.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for correctness after defaults have been
// applied. It returns ValidationErrors listing every invalid field.
func Validate(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		add("server.listen_address", "invalid host:port %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout", "must be positive")
	}

	if cfg.Intake.MaxIntentBytes <= 0 {
		add("intake.max_intent_bytes", "must be positive")
	}
	if cfg.Intake.MaxStateBytes <= 0 {
		add("intake.max_state_bytes", "must be positive")
	}

	if cfg.Policy.Dir == "" {
		add("policy.dir", "must not be empty")
	}
	if cfg.Policy.ActiveVersion == "" {
		add("policy.active_version", "must name the policy-set version to evaluate under")
	}

	if cfg.Gate.EvalTimeout <= 0 {
		add("gate.eval_timeout", "must be positive")
	}

	switch cfg.Dispatch.Executor {
	case "memory":
	case "http":
		if cfg.Dispatch.Endpoint == "" {
			add("dispatch.endpoint", "required when executor is %q", "http")
		} else if u, err := url.Parse(cfg.Dispatch.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			add("dispatch.endpoint", "invalid URL %q", cfg.Dispatch.Endpoint)
		}
	default:
		add("dispatch.executor", "unknown executor %q (options: http, memory)", cfg.Dispatch.Executor)
	}
	if cfg.Dispatch.Timeout <= 0 {
		add("dispatch.timeout", "must be positive")
	}

	switch cfg.Audit.Backend {
	case "memory":
	case "sqlite":
		if cfg.Audit.SQLite.Path == "" {
			add("audit.sqlite.path", "must not be empty")
		}
	case "file":
		if cfg.Audit.File.Path == "" {
			add("audit.file.path", "must not be empty")
		}
	default:
		add("audit.backend", "unknown backend %q (options: sqlite, file, memory)", cfg.Audit.Backend)
	}
	if cfg.Audit.MaxAppendTries < 1 {
		add("audit.max_append_tries", "must be at least 1")
	}
	if cfg.Audit.InitialBackoff <= 0 {
		add("audit.initial_backoff", "must be positive")
	}
	if cfg.Audit.MaxBackoff < cfg.Audit.InitialBackoff {
		add("audit.max_backoff", "must be at least initial_backoff")
	}
	if cfg.Audit.Sweep.Enabled {
		if _, err := cron.ParseStandard(cfg.Audit.Sweep.Schedule); err != nil {
			add("audit.sweep.schedule", "invalid cron expression %q: %v", cfg.Audit.Sweep.Schedule, err)
		}
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("telemetry.logging.level", "unknown level %q (options: debug, info, warn, error)", cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		add("telemetry.logging.format", "unknown format %q (options: json, text)", cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.Enabled && !strings.HasPrefix(cfg.Telemetry.Metrics.Path, "/") {
		add("telemetry.metrics.path", "must start with /")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
