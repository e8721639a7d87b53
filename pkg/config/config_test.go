package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValidExceptActiveVersion(t *testing.T) {
	cfg := DefaultConfig()

	// The active policy version is the one field with no sensible default.
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for missing active version")
	}
	if !strings.Contains(err.Error(), "policy.active_version") {
		t.Errorf("error = %v", err)
	}

	cfg.Policy.ActiveVersion = "v1"
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Gate.EvalTimeout != DefaultEvalTimeout {
		t.Errorf("eval timeout = %v", cfg.Gate.EvalTimeout)
	}
	if cfg.Audit.Backend != DefaultAuditBackend {
		t.Errorf("audit backend = %q", cfg.Audit.Backend)
	}
	if !cfg.Audit.Sweep.Enabled || cfg.Audit.Sweep.Schedule != DefaultSweepSchedule {
		t.Errorf("sweep = %+v", cfg.Audit.Sweep)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("metrics = %+v", cfg.Telemetry.Metrics)
	}

	// Explicit values survive.
	cfg2 := Config{}
	cfg2.Server.ListenAddress = "0.0.0.0:9000"
	cfg2.Gate.EvalTimeout = 10 * time.Second
	ApplyDefaults(&cfg2)
	if cfg2.Server.ListenAddress != "0.0.0.0:9000" || cfg2.Gate.EvalTimeout != 10*time.Second {
		t.Error("defaults clobbered explicit values")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_address: "127.0.0.1:9090"
policy:
  dir: ./testdata/policies
  active_version: v3
  watch: true
gate:
  eval_timeout: 500ms
audit:
  backend: file
  file:
    path: /tmp/audit.jsonl
dispatch:
  executor: http
  endpoint: http://executor.internal:8081/execute
telemetry:
  logging:
    level: debug
    format: text
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:9090" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Policy.ActiveVersion != "v3" || !cfg.Policy.Watch {
		t.Errorf("policy = %+v", cfg.Policy)
	}
	if cfg.Gate.EvalTimeout != 500*time.Millisecond {
		t.Errorf("eval timeout = %v", cfg.Gate.EvalTimeout)
	}
	if cfg.Audit.Backend != "file" || cfg.Audit.File.Path != "/tmp/audit.jsonl" {
		t.Errorf("audit = %+v", cfg.Audit)
	}
	// Untouched sections still pick up defaults.
	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("policy:\n  active_version: v1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("JANUS_SERVER_LISTEN_ADDRESS", "0.0.0.0:7070")
	t.Setenv("JANUS_POLICY_ACTIVE_VERSION", "v2")
	t.Setenv("JANUS_GATE_EVAL_TIMEOUT", "750ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.ListenAddress != "0.0.0.0:7070" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Policy.ActiveVersion != "v2" {
		t.Errorf("active version = %q", cfg.Policy.ActiveVersion)
	}
	if cfg.Gate.EvalTimeout != 750*time.Millisecond {
		t.Errorf("eval timeout = %v", cfg.Gate.EvalTimeout)
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.Policy.ActiveVersion = "v1"
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "bad listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "no-port" },
			wantField: "server.listen_address",
		},
		{
			name:      "unknown audit backend",
			mutate:    func(c *Config) { c.Audit.Backend = "tape" },
			wantField: "audit.backend",
		},
		{
			name:      "http executor without endpoint",
			mutate:    func(c *Config) { c.Dispatch.Executor = "http" },
			wantField: "dispatch.endpoint",
		},
		{
			name:      "unknown executor",
			mutate:    func(c *Config) { c.Dispatch.Executor = "carrier-pigeon" },
			wantField: "dispatch.executor",
		},
		{
			name:      "bad cron schedule",
			mutate:    func(c *Config) { c.Audit.Sweep.Schedule = "whenever" },
			wantField: "audit.sweep.schedule",
		},
		{
			name:      "bad log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "loud" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "zero eval timeout",
			mutate:    func(c *Config) { c.Gate.EvalTimeout = 0 },
			wantField: "gate.eval_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %v does not name %s", err, tt.wantField)
			}
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ListenAddress = "bad"
	cfg.Audit.Backend = "tape"

	err := Validate(cfg)
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if len(verrs) < 3 {
		t.Errorf("got %d errors, want at least 3 (address, backend, active version)", len(verrs))
	}
}
