package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/recoverykit/recovery"
)

const testYAML = `
name: workoutd
environment: staging
version: 1.2.0
logging:
  level: warn
  format: json
recovery:
  max_concurrent: 3
  profiles:
    network:
      max_retries: 5
      base_delay: 500ms
database:
  enabled: true
  dsn: "file::memory:"
  slow_query_threshold: 50ms
server:
  port: 9090
  rate_limit: 10
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", testYAML)

	cfg, err := Load("workoutd", WithConfigFile(path), WithEnvFile("/nonexistent/.env"), WithEnvPrefix("RKTEST_YAML"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Debug {
		t.Errorf("environment = %q debug = %v", cfg.Environment, cfg.Debug)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.ServiceName != "workoutd" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Recovery.MaxConcurrent != 3 {
		t.Errorf("max_concurrent = %d, want 3", cfg.Recovery.MaxConcurrent)
	}
	network := cfg.Recovery.Profiles[recovery.ProfileNetwork]
	if network.MaxRetries != 5 || network.BaseDelay != 500*time.Millisecond {
		t.Errorf("network profile = %+v", network)
	}
	if !cfg.Database.Enabled || cfg.Database.DSN != "file::memory:" || cfg.Database.SlowQueryThreshold != "50ms" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("database default max_open_conns = %d, want 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.Port != 9090 || cfg.Server.RateBurst != 20 {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", testYAML)
	envPath := writeFile(t, dir, ".env", "RKTEST_ENV_SERVER_PORT=7070\n")
	t.Cleanup(func() { _ = os.Unsetenv("RKTEST_ENV_SERVER_PORT") })
	t.Setenv("RKTEST_ENV_RECOVERY_MAX_CONCURRENT", "8")
	t.Setenv("RKTEST_ENV_DATABASE_MAX_OPEN_CONNS", "4")

	cfg, err := Load("workoutd", WithConfigFile(path), WithEnvFile(envPath), WithEnvPrefix("RKTEST_ENV"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Recovery.MaxConcurrent != 8 {
		t.Errorf("max_concurrent = %d, want 8", cfg.Recovery.MaxConcurrent)
	}
	if cfg.Database.MaxOpenConns != 4 {
		t.Errorf("max_open_conns = %d, want 4", cfg.Database.MaxOpenConns)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070 from env file", cfg.Server.Port)
	}
	if cfg.Recovery.Profiles[recovery.ProfileNetwork].MaxRetries != 5 {
		t.Error("file values outside the overridden keys should survive")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: [unclosed")
	if _, err := Load("workoutd", WithConfigFile(path), WithEnvPrefix("RKTEST_BAD")); err == nil {
		t.Fatal("expected read error")
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "environment: qa\n")
	_, err := Load("workoutd", WithConfigFile(path), WithEnvPrefix("RKTEST_QA"))
	if err == nil || !strings.Contains(err.Error(), "config.environment") {
		t.Fatalf("err = %v, want environment error", err)
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Name: "svc"}
	cfg.ApplyDefaults()

	if cfg.Environment != "development" || !cfg.Debug {
		t.Errorf("environment = %q debug = %v", cfg.Environment, cfg.Debug)
	}
	if cfg.Version == "" {
		t.Error("version should default to the build version")
	}
	if cfg.Logging.ServiceName != "svc" {
		t.Errorf("logging service = %q", cfg.Logging.ServiceName)
	}
	if cfg.Recovery.MaxConcurrent != recovery.DefaultMaxConcurrent {
		t.Errorf("max_concurrent = %d", cfg.Recovery.MaxConcurrent)
	}
	if cfg.Telemetry.Endpoint != "localhost:4318" || cfg.Telemetry.SampleRate != 1.0 || cfg.Telemetry.MetricInterval != 30*time.Second {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}

	prod := Config{Name: "svc", Environment: "production"}
	prod.ApplyDefaults()
	if prod.Debug {
		t.Error("production should not enable debug")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Config{Name: "svc"}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "config.name is required"},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "config.environment"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "config.logging"},
		{"zero concurrency", func(c *Config) { c.Recovery.MaxConcurrent = 0 }, "max_concurrent"},
		{"unknown profile", func(c *Config) {
			c.Recovery.Profiles = map[string]recovery.ProfileOverride{"turbo": {MaxRetries: 1}}
		}, `unknown profile "turbo"`},
		{"negative profile", func(c *Config) {
			c.Recovery.Profiles = map[string]recovery.ProfileOverride{recovery.ProfileCache: {MaxRetries: -1}}
		}, "non-negative"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, "sample_rate"},
		{"database dsn", func(c *Config) { c.Database.Enabled = true }, "config.database"},
		{"redis addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "config.redis"},
		{"server port", func(c *Config) { c.Server.Port = 70000 }, "config.server"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_RecoveryOptions(t *testing.T) {
	cfg := Config{Name: "svc"}
	cfg.ApplyDefaults()
	if n := len(cfg.RecoveryOptions()); n != 1 {
		t.Errorf("options without profiles = %d, want 1", n)
	}

	cfg.Recovery.MaxConcurrent = 2
	cfg.Recovery.Profiles = map[string]recovery.ProfileOverride{recovery.ProfileNetwork: {MaxRetries: 1}}
	m := recovery.New(cfg.RecoveryOptions()...)
	if got := m.MaxConcurrent(); got != 2 {
		t.Errorf("manager max concurrent = %d, want 2", got)
	}
}

func TestConfig_TelemetryConfigs(t *testing.T) {
	cfg := Config{Name: "svc", Version: "0.1.0", Environment: "production"}
	cfg.ApplyDefaults()

	tc := cfg.TracerConfig()
	if tc.ServiceName != "svc" || tc.Environment != "production" || tc.SampleRate != 1.0 {
		t.Errorf("tracer config = %+v", tc)
	}
	mc := cfg.MeterConfig()
	if mc.ServiceVersion != "0.1.0" || mc.Interval != 30*time.Second {
		t.Errorf("meter config = %+v", mc)
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolver_ResolveFiles(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		opts       LoaderConfig
		wantConfig string
		wantEnv    string
	}{
		{
			name:       "service directory first",
			files:      []string{"./cmd/workoutd/config.yml", "./config.yml", "./cmd/workoutd/.env.workoutd", "./.env"},
			wantConfig: "./cmd/workoutd/config.yml",
			wantEnv:    "./cmd/workoutd/.env.workoutd",
		},
		{
			name:       "root fallback",
			files:      []string{"./config.yml", "./.env"},
			wantConfig: "./config.yml",
			wantEnv:    "./.env",
		},
		{
			name:       "explicit paths win",
			files:      []string{"./config.yml"},
			opts:       LoaderConfig{ConfigFile: "/etc/workoutd.yml", EnvFile: "/etc/workoutd.env"},
			wantConfig: "/etc/workoutd.yml",
			wantEnv:    "/etc/workoutd.env",
		},
		{name: "nothing found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			got := (&Resolver{FileSystem: fs}).ResolveFiles("workoutd", tc.opts)
			if got.ConfigFile != tc.wantConfig || got.EnvFile != tc.wantEnv {
				t.Errorf("got %+v, want config=%q env=%q", got, tc.wantConfig, tc.wantEnv)
			}
		})
	}
}

func TestLoadConfig_UsesFileSystem(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env": true}}
	var cfg Config
	if err := LoadConfig("workoutd", &cfg, WithFileSystem(fs), WithEnvPrefix("RKTEST_FS")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !slices.Equal(fs.loaded, []string{"./.env"}) {
		t.Errorf("loaded env files = %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("RECOVERY_MAX_CONCURRENT")
	for _, want := range []string{"recovery_max_concurrent", "recovery.max_concurrent", "recovery.max.concurrent"} {
		if !slices.Contains(got, want) {
			t.Errorf("variants %v missing %q", got, want)
		}
	}
	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}

	if got := envKeyVariants("PORT"); !slices.Equal(got, []string{"port"}) {
		t.Errorf("single segment = %v", got)
	}
	if got := envKeyVariants("A_B_C_D_E_F_G"); len(got) != 2 {
		t.Errorf("long keys should only get flat and dotted variants, got %d", len(got))
	}
}
